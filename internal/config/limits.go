package config

const (
	// MaxFolderNameLength is the maximum length for patient and appointment
	// folder names. Most filesystems cap a single path component at 255 bytes.
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for copied-in or recorded file names.
	MaxFileNameLength = 255

	// MaxPageLimit caps the limit of a single clipsDetailed page.
	MaxPageLimit = 1000

	// DefaultPageSize is the "load more" step when PAGE_SIZE is unset.
	DefaultPageSize = 50

	// MaxRecordedAudioBytes bounds a single saveRecordedAudio payload (decoded).
	MaxRecordedAudioBytes = 100 << 20

	// MaxRequestBytes bounds an RPC request body. A recording travels base64
	// encoded, so the body can be a third larger than the audio itself.
	MaxRequestBytes = MaxRecordedAudioBytes/3*4 + 1<<20

	// MaxDictionaryValueLength bounds doctor/diagnosis entries.
	MaxDictionaryValueLength = 200
)
