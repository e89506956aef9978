package fsnode

import "fmt"

func fmtFloat1(v float64) []byte { return []byte(fmt.Sprintf("%.1f\n", v)) }
func fmtFloat3(v float64) []byte { return []byte(fmt.Sprintf("%.3f\n", v)) }
func fmtBool(v bool) []byte {
	if v {
		return []byte("true\n")
	}
	return []byte("false\n")
}
func fmtInt(v int) []byte    { return []byte(fmt.Sprintf("%d\n", v)) }
func fmtString(v string) []byte { return []byte(v + "\n") }
