// controller/main_test.go
package controller

import (
	"os"
	"testing"

	logger "github.com/dev-mohitbeniwal/warden/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "warden-controller-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
