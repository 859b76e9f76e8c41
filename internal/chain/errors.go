package chain

import (
	"errors"
	"fmt"
)

var (
	ErrIntegrity  = errors.New("chain: integrity check failed")
	ErrOutOfRange = errors.New("chain: index out of range")
	ErrIndex      = errors.New("chain: block index does not extend the chain")
	ErrLink       = errors.New("chain: previous hash does not match the head")
	ErrHash       = errors.New("chain: block hash does not match its content")
	ErrEncode     = errors.New("chain: cannot encode block")
)

// IntegrityError locates the first block that failed verification.
type IntegrityError struct {
	Index  int
	Reason Reason
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("block %d: %s: %v", e.Index, e.Reason, ErrIntegrity)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}
