// Package testing moves the working directory to the module root, so tests
// resolve .env, log and sqlite paths the same way the server does.
//
//	import _ "liyu1981.xyz/iot-camera-service/pkg/testing"
package testing

import (
	"os"
	"path/filepath"
	"runtime"
)

func moduleRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// no go.mod above, fall back to the fixed layout pkg/testing
			return filepath.Join(filepath.Dir(filename), "..", "..")
		}
		dir = parent
	}
}

func init() {
	if err := os.Chdir(moduleRoot()); err != nil {
		panic(err)
	}
}
