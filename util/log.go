package util

import "github.com/hauke96/sigolo/v2"

// LogFatalBug ends the program for states that are impossible unless the code itself is wrong.
func LogFatalBug(format string, args ...interface{}) {
	sigolo.Fatalb(1, format+" - This is a bug, please report it.", args...)
}
