package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/test/fake"
)

func execute(t *testing.T, args ...string) (string, error) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPrintConfig(t *testing.T) {
	out, err := execute(t, "print-config", "--service", "grpc://dispatcher:5050", "--job-name", "train")
	require.NoError(t, err)
	require.Contains(t, out, `service = "grpc://dispatcher:5050"`)
	require.Contains(t, out, `job-name = "train"`)

	_, err = execute(t, "print-config", "--service", "grpc://dispatcher:5050", "--compression", "zstd")
	require.Error(t, err)
}

func TestRegisterAndRead(t *testing.T) {
	c, err := fake.NewTCPCluster(1)
	require.NoError(t, err)
	defer c.Close()

	out, err := execute(t, "register", "--service", c.Service("grpc"), "--range", "5")
	require.NoError(t, err)
	require.Contains(t, out, "dataset id: 1")

	out, err = execute(t, "read", "--service", c.Service("grpc"), "--dataset-id", "1",
		"--range", "5", "--compression", "AUTO")
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2", "3", "4"}, strings.Fields(out))

	out, err = execute(t, "read", "--service", c.Service("grpc"), "--range", "5", "--repeat", "-1", "--take", "3")
	require.NoError(t, err)
	require.Len(t, strings.Fields(out), 3)
}
