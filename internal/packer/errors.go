package packer

import "github.com/m-mizutani/goerr/v2"

var (
	ErrRunActive = goerr.New("a packaging run is already in progress")

	ErrInterpreterNotFound = goerr.New("python interpreter or pip not found")
	ErrInstallTimeout      = goerr.New("installation timed out")
	ErrInstallFailed       = goerr.New("installation exited with a non-zero status")
	ErrInstallVerify       = goerr.New("installation finished but the tool is still unavailable")
	ErrInstallUnknown      = goerr.New("unexpected installation error")
	ErrCanceled            = goerr.New("run canceled")

	ErrToolNotFound = goerr.New("packaging tool or python not found")
	ErrBuildFailed  = goerr.New("packaging exited with a non-zero status")
	ErrUnexpected   = goerr.New("unexpected packaging error")
)
