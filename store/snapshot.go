package store

import (
	"bytes"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/launchvest/launchvest-go/distribution"
	"github.com/launchvest/launchvest-go/shared"
	"github.com/launchvest/launchvest-go/u128"
	"github.com/launchvest/launchvest-go/vesting"
)

// snapshotVersion guards the borsh layout. Field order in the record
// structs below is the upgrade contract: append, never reorder.
const snapshotVersion uint8 = 1

type launchRecord struct {
	Phase            uint8
	Paused           bool
	RemainingSupply  binary.Uint128
	TotalMinted      binary.Uint128
	MintCap          binary.Uint128
	TotalRaised      binary.Uint128
	LargestPurchase  binary.Uint128
	LargestPurchaser string
	Participants     []string
	RetainedExcess   binary.Uint128
}

type scheduleRecord struct {
	ID                uint64
	Token             string
	User              string
	StartTime         int64
	CliffDuration     int64
	Duration          int64
	TotalAmount       binary.Uint128
	TransferredAmount binary.Uint128
}

type configRecord struct {
	Token          string
	DurationMin    int64
	DurationMax    int64
	HasSupplyCap   bool
	TotalSupplyCap binary.Uint128
	LaunchContract string
}

// Snapshot is the borsh-serializable image of a launch: controller state
// plus every vesting schedule and configuration.
type Snapshot struct {
	Version   uint8
	Launch    launchRecord
	Schedules []scheduleRecord
	Configs   []configRecord
}

// BuildSnapshot assembles a Snapshot from exported state.
func BuildSnapshot(state distribution.State, schedules []*vesting.Schedule, configs map[shared.Address]vesting.TokenVestingConfig) (*Snapshot, error) {
	launch := launchRecord{
		Phase:            uint8(state.Phase),
		Paused:           state.Paused,
		LargestPurchaser: state.LargestPurchaser.String(),
	}
	for _, conv := range []struct {
		src *big.Int
		dst *binary.Uint128
	}{
		{state.RemainingSupply, &launch.RemainingSupply},
		{state.TotalMinted, &launch.TotalMinted},
		{state.MintCap, &launch.MintCap},
		{state.TotalRaised, &launch.TotalRaised},
		{state.LargestPurchase, &launch.LargestPurchase},
		{state.RetainedExcess, &launch.RetainedExcess},
	} {
		v, err := u128.FromBig(conv.src)
		if err != nil {
			return nil, errors.Wrap(err, "launch state")
		}
		*conv.dst = v
	}
	for _, p := range state.Participants {
		launch.Participants = append(launch.Participants, p.String())
	}

	snap := &Snapshot{Version: snapshotVersion, Launch: launch}
	for _, s := range schedules {
		rec := scheduleRecord{
			ID:            s.ID,
			Token:         s.Token.String(),
			User:          s.User.String(),
			StartTime:     s.StartTime,
			CliffDuration: s.CliffDuration,
			Duration:      s.Duration,
		}
		var err error
		if rec.TotalAmount, err = u128.FromBig(s.TotalAmount); err != nil {
			return nil, errors.Wrapf(err, "schedule %d", s.ID)
		}
		if rec.TransferredAmount, err = u128.FromBig(s.TransferredAmount); err != nil {
			return nil, errors.Wrapf(err, "schedule %d", s.ID)
		}
		snap.Schedules = append(snap.Schedules, rec)
	}
	for token, cfg := range configs {
		rec := configRecord{
			Token:          token.String(),
			DurationMin:    cfg.DurationMin,
			DurationMax:    cfg.DurationMax,
			LaunchContract: cfg.LaunchContract.String(),
		}
		if cfg.TotalSupplyCap != nil {
			v, err := u128.FromBig(cfg.TotalSupplyCap)
			if err != nil {
				return nil, errors.Wrapf(err, "config %s", token)
			}
			rec.HasSupplyCap = true
			rec.TotalSupplyCap = v
		}
		snap.Configs = append(snap.Configs, rec)
	}
	return snap, nil
}

// Marshal serializes the snapshot with borsh.
func (s *Snapshot) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.NewBorshEncoder(buf).Encode(s); err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes a borsh snapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var out Snapshot
	if err := binary.NewBorshDecoder(data).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	if out.Version != snapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", out.Version)
	}
	return &out, nil
}

// LaunchState reconstructs the controller state held in the snapshot.
func (s *Snapshot) LaunchState() distribution.State {
	state := distribution.State{
		Phase:            distribution.Phase(s.Launch.Phase),
		Paused:           s.Launch.Paused,
		RemainingSupply:  u128.ToBig(s.Launch.RemainingSupply),
		TotalMinted:      u128.ToBig(s.Launch.TotalMinted),
		MintCap:          u128.ToBig(s.Launch.MintCap),
		TotalRaised:      u128.ToBig(s.Launch.TotalRaised),
		LargestPurchase:  u128.ToBig(s.Launch.LargestPurchase),
		LargestPurchaser: shared.Address(s.Launch.LargestPurchaser),
		RetainedExcess:   u128.ToBig(s.Launch.RetainedExcess),
	}
	for _, p := range s.Launch.Participants {
		state.Participants = append(state.Participants, shared.Address(p))
	}
	return state
}

// VestingState reconstructs the schedules and configurations held in the
// snapshot.
func (s *Snapshot) VestingState() ([]*vesting.Schedule, map[shared.Address]vesting.TokenVestingConfig) {
	schedules := make([]*vesting.Schedule, 0, len(s.Schedules))
	for _, rec := range s.Schedules {
		schedules = append(schedules, &vesting.Schedule{
			ID:                rec.ID,
			Token:             shared.Address(rec.Token),
			User:              shared.Address(rec.User),
			StartTime:         rec.StartTime,
			CliffDuration:     rec.CliffDuration,
			Duration:          rec.Duration,
			TotalAmount:       u128.ToBig(rec.TotalAmount),
			TransferredAmount: u128.ToBig(rec.TransferredAmount),
		})
	}
	configs := make(map[shared.Address]vesting.TokenVestingConfig, len(s.Configs))
	for _, rec := range s.Configs {
		cfg := vesting.TokenVestingConfig{
			DurationMin:    rec.DurationMin,
			DurationMax:    rec.DurationMax,
			LaunchContract: shared.Address(rec.LaunchContract),
		}
		if rec.HasSupplyCap {
			cfg.TotalSupplyCap = u128.ToBig(rec.TotalSupplyCap)
		}
		configs[shared.Address(rec.Token)] = cfg
	}
	return schedules, configs
}
