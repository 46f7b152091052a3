package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/tallybook/internal/ir"
	"github.com/roach88/tallybook/internal/proof"
)

// SystemProgram is the program name logged for runtime-level instructions
// such as airdrops.
const SystemProgram = "system"

// DefaultAirdropLimit caps a single faucet airdrop.
const DefaultAirdropLimit = 10_000_000_000

// Verifier validates a proof for an instruction. Implemented by
// proof.Verifier.
type Verifier interface {
	Verify(token, audience, digest string) (proof.Verified, error)
}

// Instruction is one request to a program.
type Instruction struct {
	Program string
	Name    string

	// Accounts are the addresses the handler may touch besides the signer
	// wallets. They are locked for the duration of the instruction.
	Accounts []ir.Address

	// Proofs are signed tokens, one per signer.
	Proofs []string

	Args ir.Object
}

// Audience is the proof audience for the instruction.
func (in Instruction) Audience() string { return in.Program + "." + in.Name }

// Digest binds proofs to this exact instruction.
func (in Instruction) Digest() (string, error) {
	return ir.InstructionDigest(in.Program, in.Name, in.Accounts, in.Args)
}

// Handler executes an instruction against a Frame. Returning an error rolls
// back every effect of the instruction.
type Handler func(f *Frame) error

// Runtime is the simulated host ledger. It provides what the record core
// relies on: per-address serialization, a trusted monotonic clock,
// signature verification, atomic commit, and storage deposit accounting.
//
// Thread-safety model:
//   - Invoke, Airdrop and all reads are safe from any goroutine
//   - instructions sharing an address run one at a time
//   - instructions on disjoint addresses run in parallel
type Runtime struct {
	space        AddressSpace
	clock        Clock
	rent         Rent
	verifier     Verifier
	txids        TxIDGenerator
	logger       *slog.Logger
	registry     prometheus.Registerer
	metrics      *runtimeMetrics
	airdropLimit uint64
	locks        lockTable
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock sets the trusted clock. Default: NewSystemClock().
func WithClock(c Clock) Option {
	return func(r *Runtime) { r.clock = c }
}

// WithRent sets the deposit schedule. Default: DefaultRent().
func WithRent(rent Rent) Option {
	return func(r *Runtime) { r.rent = rent }
}

// WithVerifier sets the proof verifier. Default: proof.NewVerifier().
func WithVerifier(v Verifier) Option {
	return func(r *Runtime) { r.verifier = v }
}

// WithTxIDGenerator sets the transaction ID source. Default: UUIDv7Generator.
func WithTxIDGenerator(g TxIDGenerator) Option {
	return func(r *Runtime) { r.txids = g }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithPromRegistry registers runtime metrics with reg.
func WithPromRegistry(reg prometheus.Registerer) Option {
	return func(r *Runtime) { r.registry = reg }
}

// WithAirdropLimit caps a single airdrop. Zero disables airdrops.
func WithAirdropLimit(lamports uint64) Option {
	return func(r *Runtime) { r.airdropLimit = lamports }
}

// New creates a Runtime over space.
func New(space AddressSpace, opts ...Option) *Runtime {
	r := &Runtime{
		space:        space,
		clock:        NewSystemClock(),
		rent:         DefaultRent(),
		verifier:     proof.NewVerifier(),
		txids:        UUIDv7Generator{},
		logger:       slog.Default(),
		airdropLimit: DefaultAirdropLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.metrics = newMetrics(r.registry)
	return r
}

// Rent returns the deposit schedule in effect.
func (r *Runtime) Rent() Rent { return r.rent }

// Invoke runs handler as one atomic instruction and returns its log entry.
//
// Order of work: verify every proof, lock the declared accounts and signer
// wallets, read the clock once, spend the proofs and run the handler inside
// a backend transaction, append the log entry, commit. Any failure rolls
// back, including the spent proofs.
func (r *Runtime) Invoke(ctx context.Context, in Instruction, handler Handler) (ir.LogEntry, error) {
	start := time.Now()
	entry, err := r.invoke(ctx, in, handler)
	r.metrics.latency.WithLabelValues(in.Program, in.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		r.metrics.instructions.WithLabelValues(in.Program, in.Name, ErrorCode(err)).Inc()
		r.logger.Debug("instruction rejected",
			"program", in.Program,
			"instruction", in.Name,
			"error", err)
		return ir.LogEntry{}, err
	}

	r.metrics.instructions.WithLabelValues(in.Program, in.Name, "ok").Inc()
	r.logger.Info("instruction committed",
		"program", in.Program,
		"instruction", in.Name,
		"tx", entry.TxID,
		"seq", entry.Seq)
	return entry, nil
}

func (r *Runtime) invoke(ctx context.Context, in Instruction, handler Handler) (ir.LogEntry, error) {
	proofs, signers, err := r.verify(in)
	if err != nil {
		return ir.LogEntry{}, err
	}

	declared := make(map[ir.Address]bool, len(in.Accounts)+len(signers))
	lockset := make([]ir.Address, 0, len(in.Accounts)+len(signers)+len(proofs))
	for _, a := range in.Accounts {
		declared[a] = true
		lockset = append(lockset, a)
	}
	for _, s := range signers {
		w := ir.WalletAddress(s)
		declared[w] = true
		lockset = append(lockset, w)
	}
	for _, p := range proofs {
		lockset = append(lockset, ir.ProofAddress(p.Identity, p.ID))
	}

	release := r.locks.acquire(lockset)
	defer release()

	if err := ctx.Err(); err != nil {
		return ir.LogEntry{}, err
	}

	now := r.clock.Now()
	txn, err := r.space.Begin(ctx)
	if err != nil {
		return ir.LogEntry{}, fmt.Errorf("begin: %w", err)
	}
	defer txn.Rollback()

	if err := spend(ctx, txn, proofs); err != nil {
		return ir.LogEntry{}, err
	}

	frame := &Frame{
		ctx:      ctx,
		txn:      txn,
		rent:     r.rent,
		now:      now,
		signers:  signers,
		declared: declared,
	}
	if err := handler(frame); err != nil {
		return ir.LogEntry{}, err
	}

	entry := ir.LogEntry{
		TxID:        r.txids.Generate(),
		Program:     in.Program,
		Instruction: in.Name,
		Accounts:    append([]ir.Address(nil), in.Accounts...),
		Signers:     signers,
		Args:        in.Args,
		Timestamp:   now,
	}
	if err := txn.Append(ctx, &entry); err != nil {
		return ir.LogEntry{}, fmt.Errorf("append log: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return ir.LogEntry{}, fmt.Errorf("commit: %w", err)
	}

	if frame.deposited > 0 {
		r.metrics.deposits.Add(float64(frame.deposited))
	}
	if frame.refunded > 0 {
		r.metrics.refunds.Add(float64(frame.refunded))
	}
	return entry, nil
}

// verify checks every proof and returns them with the distinct signers in
// proof order.
func (r *Runtime) verify(in Instruction) ([]proof.Verified, []ir.Identity, error) {
	if len(in.Proofs) == 0 {
		return nil, nil, nil
	}
	digest, err := in.Digest()
	if err != nil {
		return nil, nil, err
	}
	proofs := make([]proof.Verified, 0, len(in.Proofs))
	signers := make([]ir.Identity, 0, len(in.Proofs))
	seen := make(map[ir.Identity]bool, len(in.Proofs))
	for i, token := range in.Proofs {
		p, err := r.verifier.Verify(token, in.Audience(), digest)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: proof %d: %v", ErrInvalidProof, i, err)
		}
		proofs = append(proofs, p)
		if !seen[p.Identity] {
			seen[p.Identity] = true
			signers = append(signers, p.Identity)
		}
	}
	return proofs, signers, nil
}

// spend marks each proof used in txn. A proof already marked, by an earlier
// commit or earlier in the same instruction, fails with ErrInvalidProof.
// The marker holds the proof expiry as big-endian unix seconds.
func spend(ctx context.Context, txn Txn, proofs []proof.Verified) error {
	for i, p := range proofs {
		addr := ir.ProofAddress(p.Identity, p.ID)
		used, err := txn.Get(ctx, addr)
		if err != nil {
			return err
		}
		if used != nil {
			return fmt.Errorf("%w: proof %d already used", ErrInvalidProof, i)
		}
		var expires [8]byte
		binary.BigEndian.PutUint64(expires[:], uint64(p.Expires.Unix()))
		if err := txn.Put(ctx, addr, Account{Data: expires[:]}); err != nil {
			return err
		}
	}
	return nil
}

// Airdrop credits lamports to id's wallet. It is the development faucet
// used to fund storage deposits.
func (r *Runtime) Airdrop(ctx context.Context, id ir.Identity, lamports uint64) (ir.LogEntry, error) {
	if lamports > r.airdropLimit {
		return ir.LogEntry{}, fmt.Errorf("%w: %d > %d", ErrAirdropLimit, lamports, r.airdropLimit)
	}
	amount, err := ir.Uint(lamports)
	if err != nil {
		return ir.LogEntry{}, err
	}
	wallet := ir.WalletAddress(id)
	in := Instruction{
		Program:  SystemProgram,
		Name:     "airdrop",
		Accounts: []ir.Address{wallet},
		Args:     ir.Object{"lamports": amount},
	}
	entry, err := r.Invoke(ctx, in, func(f *Frame) error {
		acct, err := f.Load(wallet)
		if err != nil {
			return err
		}
		if acct == nil {
			acct = &Account{}
		}
		if acct.Lamports > math.MaxUint64-lamports {
			return ir.ErrOverflow
		}
		acct.Lamports += lamports
		return f.txn.Put(f.ctx, wallet, *acct)
	})
	if err == nil {
		r.metrics.airdrops.Add(float64(lamports))
	}
	return entry, err
}

// Account returns the committed account at addr, or nil when empty.
func (r *Runtime) Account(ctx context.Context, addr ir.Address) (*Account, error) {
	txn, err := r.space.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer txn.Rollback()
	return txn.Get(ctx, addr)
}

// Balance returns the lamports in id's wallet.
func (r *Runtime) Balance(ctx context.Context, id ir.Identity) (uint64, error) {
	acct, err := r.Account(ctx, ir.WalletAddress(id))
	if err != nil || acct == nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// Scan iterates committed accounts in address order.
func (r *Runtime) Scan(ctx context.Context, fn func(addr ir.Address, acct Account) error) error {
	return r.space.Scan(ctx, fn)
}

// ReadLog returns committed log entries after afterSeq.
func (r *Runtime) ReadLog(ctx context.Context, afterSeq int64, limit int) ([]ir.LogEntry, error) {
	return r.space.ReadLog(ctx, afterSeq, limit)
}

// ErrorCode classifies err for metrics labels and machine-readable output:
// the ir.Error code when there is one, else the name of the host sentinel
// it wraps, else "ERROR".
func ErrorCode(err error) string {
	if code := ir.CodeOf(err); code != "" {
		return string(code)
	}
	switch {
	case errors.Is(err, ErrInvalidProof):
		return "INVALID_PROOF"
	case errors.Is(err, ErrMissingSigner):
		return "MISSING_SIGNER"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrUndeclaredAccount):
		return "UNDECLARED_ACCOUNT"
	case errors.Is(err, ErrAccountInUse):
		return "ACCOUNT_IN_USE"
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrAccountSize):
		return "ACCOUNT_SIZE"
	case errors.Is(err, ErrAirdropLimit):
		return "AIRDROP_LIMIT"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CANCELED"
	}
	return "ERROR"
}
