package errors

var (
	// Domain errors — used in usecase/repository
	ErrSpaceKeyNotFound   = FailedPrecondition("space key not found on this device")
	ErrDecryptionFailed   = InvalidArg("decryption failed: wrong key or corrupted envelope")
	ErrIdentityGeneration = Internal("identity key generation failed")
	ErrSpaceNotFound      = NotFound("space not found")
	ErrMemberNotFound     = NotFound("member not found")
	ErrNotAMember         = Forbidden("not a member of this space")
	ErrMessagingDenied    = Forbidden("role does not allow sending messages")
	ErrTimelineClosed     = FailedPrecondition("space view is closed")
	ErrMalformedEvent     = InvalidArg("malformed live event payload")
	ErrSessionExpired     = Unauthorized("session token is expired or invalid")
)

func ErrFetchFailed(cause error) error {
	return Wrap(CodeUnavailable, "failed to fetch message history", cause)
}

func ErrSubscribeFailed(cause error) error {
	return Wrap(CodeUnavailable, "failed to subscribe to live message feed", cause)
}

func ErrSendFailed(cause error) error {
	return Wrap(CodeUnavailable, "failed to persist encrypted message", cause)
}

func ErrVaultFailed(cause error) error {
	return Wrap(CodeInternal, "secure key store operation failed", cause)
}
