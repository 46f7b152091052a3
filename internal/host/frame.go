package host

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/tallybook/internal/ir"
)

// Frame is a handler's view of one instruction: the validated signers, the
// trusted timestamp, and transactional access to the declared accounts.
//
// A Frame is only valid during the handler call it is passed to.
type Frame struct {
	ctx      context.Context
	txn      Txn
	rent     Rent
	now      ir.Timestamp
	signers  []ir.Identity
	declared map[ir.Address]bool

	deposited uint64
	refunded  uint64
}

// Now returns the trusted clock reading for this instruction. Every call
// within one instruction returns the same value.
func (f *Frame) Now() ir.Timestamp { return f.now }

// IsSigner reports whether id signed the instruction.
func (f *Frame) IsSigner(id ir.Identity) bool {
	for _, s := range f.signers {
		if s == id {
			return true
		}
	}
	return false
}

// RequireSigner fails with ErrMissingSigner unless id signed the
// instruction.
func (f *Frame) RequireSigner(id ir.Identity) error {
	if !f.IsSigner(id) {
		return fmt.Errorf("%w: %s", ErrMissingSigner, id)
	}
	return nil
}

func (f *Frame) check(addr ir.Address) error {
	if !f.declared[addr] {
		return fmt.Errorf("%w: %s", ErrUndeclaredAccount, addr)
	}
	return nil
}

// Load returns the account at addr, or nil when the address is empty.
func (f *Frame) Load(addr ir.Address) (*Account, error) {
	if err := f.check(addr); err != nil {
		return nil, err
	}
	return f.txn.Get(f.ctx, addr)
}

// Data returns the data stored at addr, or nil when the address is empty.
func (f *Frame) Data(addr ir.Address) ([]byte, error) {
	acct, err := f.Load(addr)
	if err != nil || acct == nil {
		return nil, err
	}
	return acct.Data, nil
}

// Init allocates addr with data. payer must have signed and is debited the
// storage deposit for len(data) bytes. An occupied address fails with
// ErrAccountInUse.
func (f *Frame) Init(addr ir.Address, payer ir.Identity, data []byte) error {
	if err := f.check(addr); err != nil {
		return err
	}
	if err := f.RequireSigner(payer); err != nil {
		return err
	}
	existing, err := f.txn.Get(f.ctx, addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrAccountInUse, addr)
	}

	deposit := f.rent.MinimumBalance(len(data))
	walletAddr := ir.WalletAddress(payer)
	wallet, err := f.Load(walletAddr)
	if err != nil {
		return err
	}
	if wallet == nil || wallet.Lamports < deposit {
		var have uint64
		if wallet != nil {
			have = wallet.Lamports
		}
		return fmt.Errorf("%w: deposit of %d lamports, wallet holds %d", ErrInsufficientFunds, deposit, have)
	}
	wallet.Lamports -= deposit
	if err := f.txn.Put(f.ctx, walletAddr, *wallet); err != nil {
		return err
	}
	if err := f.txn.Put(f.ctx, addr, Account{Lamports: deposit, Data: data}); err != nil {
		return err
	}
	f.deposited += deposit
	return nil
}

// Write replaces the data of an existing account. The size is fixed at
// Init and cannot change.
func (f *Frame) Write(addr ir.Address, data []byte) error {
	acct, err := f.Load(addr)
	if err != nil {
		return err
	}
	if acct == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if len(acct.Data) != len(data) {
		return fmt.Errorf("%w: %s holds %d bytes, got %d", ErrAccountSize, addr, len(acct.Data), len(data))
	}
	acct.Data = data
	return f.txn.Put(f.ctx, addr, *acct)
}

// Close removes addr and credits its deposit to refundTo's wallet.
func (f *Frame) Close(addr ir.Address, refundTo ir.Identity) error {
	acct, err := f.Load(addr)
	if err != nil {
		return err
	}
	if acct == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	walletAddr := ir.WalletAddress(refundTo)
	wallet, err := f.Load(walletAddr)
	if err != nil {
		return err
	}
	if wallet == nil {
		wallet = &Account{}
	}
	if wallet.Lamports > math.MaxUint64-acct.Lamports {
		return ir.ErrOverflow
	}
	wallet.Lamports += acct.Lamports
	if err := f.txn.Delete(f.ctx, addr); err != nil {
		return err
	}
	if err := f.txn.Put(f.ctx, walletAddr, *wallet); err != nil {
		return err
	}
	f.refunded += acct.Lamports
	return nil
}
