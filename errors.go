package btclibwallet

const (
	// Error Codes
	ErrInvalid                      = "invalid"
	ErrNotConnected                 = "not_connected"
	ErrSyncAlreadyInProgress        = "sync_already_in_progress"
	ErrNotExist                     = "not_exists"
	ErrExist                        = "exists"
	ErrInvalidAddress               = "invalid_address"
	ErrInvalidPeers                 = "invalid_peers"
	ErrUnavailable                  = "unavailable"
	ErrFailedPrecondition           = "failed_precondition"
	ErrUnsupportedMode              = "unsupported_sync_mode"
	ErrNoCheckpoint                 = "no_checkpoint"
	ErrLogRotatorAlreadyInitialized = "log_rotator_already_initialized"
)

const (
	// SyncStoppedSuccess is the reason reported with a SyncStopped event
	// when a scan ran to completion.
	SyncStoppedSuccess int32 = 0

	// SyncStoppedError is the catch-all reason reported with a SyncStopped
	// event when a scan was cancelled or failed. Embedders may layer a
	// richer code space on top as long as 0 keeps meaning success.
	SyncStoppedError int32 = -1

	// TxnSubmitError is reported with a TxnSubmitted event when a
	// submission could not be handed to the network.
	TxnSubmitError int32 = -1
)
