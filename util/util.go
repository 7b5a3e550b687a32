package util

import (
	"bytes"
	"os/exec"
	"strings"
)

// GetContainerName get container name from docker process.
func GetContainerName() string {
	out, err := execShell(`cat /proc/self/cgroup | grep "cpu:/"`)
	if err != nil {
		return ""
	}
	items := strings.Split(out, "/")
	if l := len(items); l > 0 {
		return strings.TrimSpace(items[l-1])
	}
	return ""
}

func execShell(s string) (string, error) {
	// cmd for alpine docker
	cmd := exec.Command("/bin/sh", "-c", s)

	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	return out.String(), err
}
