package compress

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

const (
	rootBucketName  = "cmproot"
	queueBucketName = "cmpqueue"
	queueAddrIndex  = "address"
)

// RootRecord is the state of both trees after a flush.
type RootRecord struct {
	// Version of the trees.
	Version int64
	// AddressRoot is the hash of the address tree.
	AddressRoot []byte
	// StateRoot is the hash of the state tree.
	StateRoot []byte
	// Leaves is the number of leaves in the state tree.
	Leaves int64
}

var _ orm.Model = (*RootRecord)(nil)

func (r *RootRecord) Validate() error {
	var errs error
	if r.Version <= 0 {
		errs = errors.AppendField(errs, "Version", errors.ErrInput)
	}
	if len(r.AddressRoot) == 0 {
		errs = errors.AppendField(errs, "AddressRoot", errors.ErrEmpty)
	}
	if r.Leaves < 0 {
		errs = errors.AppendField(errs, "Leaves", errors.ErrInput)
	}
	return errs
}

func (r *RootRecord) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(*r); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

func (r *RootRecord) Unmarshal(raw []byte) error {
	var res RootRecord
	if err := bin.NewBorshDecoder(raw).Decode(&res); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*r = res
	return nil
}

func newRootBucket() orm.ModelBucket {
	return orm.NewModelBucket(rootBucketName, &RootRecord{})
}

func newQueueBucket() orm.ModelBucket {
	return orm.NewModelBucket(queueBucketName, &Account{},
		orm.WithIndex(queueAddrIndex, queuedAddress))
}

func queuedAddress(obj orm.Object) ([][]byte, error) {
	a, ok := obj.Value().(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return [][]byte{a.Address}, nil
}
