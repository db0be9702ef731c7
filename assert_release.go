//go:build !debug

package malloc

const debugChecks = false

func debugAssert(cond bool, msg string) {}
