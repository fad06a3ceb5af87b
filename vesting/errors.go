package vesting

import (
	"fmt"
	"math/big"

	"github.com/launchvest/launchvest-go/shared"
)

// NotTokenContractError rejects a RecordTransfer call whose caller is not
// the token contract registered for the schedule's token.
type NotTokenContractError struct {
	Caller shared.Address
	Token  shared.Address
}

func (e *NotTokenContractError) Error() string {
	return fmt.Sprintf("vesting: caller %s is not the token contract for %s", e.Caller, e.Token)
}

// NotConfiguredError indicates the token has never been registered.
type NotConfiguredError struct {
	Token shared.Address
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("vesting: token %s has no vesting configuration", e.Token)
}

// InvalidConfigError reports an out-of-range vesting configuration value.
type InvalidConfigError struct {
	Param  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("vesting: invalid config %s: %s", e.Param, e.Reason)
}

// InvalidScheduleError reports a rejected schedule parameter.
type InvalidScheduleError struct {
	Param  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("vesting: invalid schedule %s: %s", e.Param, e.Reason)
}

// NoSchedulesError indicates a (token, user) query matched nothing.
type NoSchedulesError struct {
	Token shared.Address
	User  shared.Address
}

func (e *NoSchedulesError) Error() string {
	return fmt.Sprintf("vesting: no schedules for user %s on token %s", e.User, e.Token)
}

// NotVestedError rejects consuming more capacity than has vested. This is
// the replay-protection backstop behind IsTransferAllowed.
type NotVestedError struct {
	Requested *big.Int
	Available *big.Int
}

func (e *NotVestedError) Error() string {
	return fmt.Sprintf("vesting: requested %s exceeds vested available %s", e.Requested, e.Available)
}

// NotAuthorizedError rejects schedule creation or config changes from a
// caller holding no grant for the token.
type NotAuthorizedError struct {
	Caller shared.Address
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("vesting: caller %s is not authorized", e.Caller)
}
