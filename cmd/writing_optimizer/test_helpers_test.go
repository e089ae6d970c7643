package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// resetFlags restores every package-level flag variable so commands can be
// executed repeatedly within one test binary.
func resetFlags() {
	configPath, logLevel, logFormat = "", "warn", "text"
	provider, model, baseURL, apiKey, secretsFile, credentials, tokenFile = "", "", "", "", "", "", ""

	analyzeDocs, analyzeFiles, analyzeURLs = nil, nil, nil
	analyzeText, analyzeStyle = "", ""
	analyzeTarget, analyzeTopN = -1, 0
	analyzeJSON, analyzeHighlight = false, false

	highlightFile, highlightText, highlightTopN, highlightJSON = "", "", 0, false
	fetchDoc, fetchOut = "", ""
	saveDoc, saveFile, saveText = "", "", ""
	authListen = "127.0.0.1:0"
	serveAddr, serveOrigins = "", ""
	historyServer, historyJSON = "", false
}

// execute runs the root command in-process and returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	var in io.Reader = strings.NewReader(stdin)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}
