//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ExecutableName returns the name of the running binary as the process
// table reports it, without the ".exe" suffix on Windows.
func ExecutableName() string {
	name := filepath.Base(os.Args[0])
	if runtime.GOOS == "windows" {
		name = strings.TrimSuffix(name, ".exe")
	}

	return name
}

// OtherInstances returns the PIDs of other processes running the executable
// called name. The current process is never included.
func OtherInstances(name string) ([]int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	return matchInstances(processList, name, os.Getpid()), nil
}

// matchInstances filters processes by executable name, skipping selfPID.
func matchInstances(processList []ps.Process, name string, selfPID int) []int {
	var pids []int

	for _, process := range processList {
		if process.Pid() == selfPID {
			continue
		}

		executable := process.Executable()
		if runtime.GOOS == "windows" {
			executable = strings.TrimSuffix(executable, ".exe")
		}

		if executable != name {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids
}
