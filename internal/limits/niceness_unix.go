//go:build unix

package limits

import "syscall"

func setNiceness(level int) error {
	return syscall.Setpriority(syscall.PRIO_PROCESS, 0, level)
}
