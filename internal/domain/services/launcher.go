package services

import (
	"context"
)

// Launcher hands paths to the host OS. Launches are fire-and-forget.
type Launcher interface {
	// Open opens path with the OS default handler (file manager for folders)
	Open(ctx context.Context, path string) error

	// Run starts executable with args without waiting for it to exit
	Run(ctx context.Context, executable string, args ...string) error
}

// PraatService integrates the Praat phonetics program
type PraatService interface {
	// SelectExecutable checks path is a runnable Praat binary and stores it in settings
	SelectExecutable(ctx context.Context, path string) (string, error)

	// OpenFile opens audioPath in Praat. An empty praatPath uses the stored one.
	OpenFile(ctx context.Context, praatPath, audioPath string) error
}
