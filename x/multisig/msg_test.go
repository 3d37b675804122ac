package multisig

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/compress"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func validArgs() CreateArgs {
	return CreateArgs{
		Threshold: 2,
		Members: []Member{
			member(3, PermFull),
			member(1, PermFull),
			member(2, PermVote),
		},
	}
}

func TestCreateMsgValidate(t *testing.T) {
	cases := map[string]struct {
		msg       quorum.Msg
		wantField string
		wantErr   *errors.Error
	}{
		"valid legacy message": {
			msg: &CreateMsg{
				CreateKey:  quorumtest.SeqAddr(0xC0),
				Creator:    quorumtest.SeqAddr(0xC1),
				CreateArgs: validArgs(),
			},
		},
		"invalid threshold is not checked by the message": {
			msg: &CreateMsg{
				CreateKey: quorumtest.SeqAddr(0xC0),
				Creator:   quorumtest.SeqAddr(0xC1),
				CreateArgs: CreateArgs{
					Threshold: 9,
					Members:   []Member{member(1, PermFull)},
				},
			},
		},
		"missing create key": {
			msg: &CreateMsg{
				Creator:    quorumtest.SeqAddr(0xC1),
				CreateArgs: validArgs(),
			},
			wantField: "CreateKey",
			wantErr:   errors.ErrInput,
		},
		"no members": {
			msg: &CreateV2Msg{
				CreateKey: quorumtest.SeqAddr(0xC0),
				Creator:   quorumtest.SeqAddr(0xC1),
				Treasury:  quorumtest.SeqAddr(0xEE),
				CreateArgs: CreateArgs{
					Threshold: 1,
				},
			},
			wantField: "Members",
			wantErr:   errors.ErrEmpty,
		},
		"invalid member key": {
			msg: &CreateV2Msg{
				CreateKey: quorumtest.SeqAddr(0xC0),
				Creator:   quorumtest.SeqAddr(0xC1),
				Treasury:  quorumtest.SeqAddr(0xEE),
				CreateArgs: CreateArgs{
					Threshold: 1,
					Members:   []Member{member(1, PermFull), {Key: quorum.Address{1}}},
				},
			},
			wantField: "Members.1.Key",
			wantErr:   errors.ErrInput,
		},
		"missing treasury": {
			msg: &CreateV2Msg{
				CreateKey:  quorumtest.SeqAddr(0xC0),
				Creator:    quorumtest.SeqAddr(0xC1),
				CreateArgs: validArgs(),
			},
			wantField: "Treasury",
			wantErr:   errors.ErrInput,
		},
		"invalid config authority": {
			msg: &CreateV2Msg{
				CreateKey: quorumtest.SeqAddr(0xC0),
				Creator:   quorumtest.SeqAddr(0xC1),
				Treasury:  quorumtest.SeqAddr(0xEE),
				CreateArgs: CreateArgs{
					ConfigAuthority: quorum.Address{1, 2},
					Threshold:       1,
					Members:         []Member{member(1, PermFull)},
				},
			},
			wantField: "ConfigAuthority",
			wantErr:   errors.ErrInput,
		},
		"missing proof": {
			msg: &CreateCompressedMsg{
				CreateKey:   quorumtest.SeqAddr(0xC0),
				Creator:     quorumtest.SeqAddr(0xC1),
				Treasury:    quorumtest.SeqAddr(0xEE),
				AddressTree: compress.DefaultTreeID(),
				CreateArgs:  validArgs(),
			},
			wantField: "Proof",
			wantErr:   errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.FieldError(t, err, tc.wantField, tc.wantErr)
		})
	}
}

func TestCreateCompressedMsgMarshal(t *testing.T) {
	memo := "team treasury"
	msg := &CreateCompressedMsg{
		CreateKey:   quorumtest.SeqAddr(0xC0),
		Creator:     quorumtest.SeqAddr(0xC1),
		Treasury:    quorumtest.SeqAddr(0xEE),
		AddressTree: compress.DefaultTreeID(),
		Proof: compress.AddressProof{
			Version: 4,
			Root:    []byte("root"),
			Proof:   []byte("proof"),
		},
		CreateArgs: CreateArgs{
			ConfigAuthority: quorumtest.SeqAddr(0xCA),
			Threshold:       2,
			Members:         []Member{member(1, PermFull), member(2, PermVote)},
			TimeLock:        60,
			Memo:            &memo,
		},
	}
	raw, err := msg.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, createCompressedMsgDiscriminator[:], raw[:8])

	var got CreateCompressedMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, msg, &got)
	assert.Equal(t, "team treasury", got.memo())
}

func TestCreateMsgDiscriminator(t *testing.T) {
	legacy := &CreateMsg{
		CreateKey:  quorumtest.SeqAddr(0xC0),
		Creator:    quorumtest.SeqAddr(0xC1),
		CreateArgs: validArgs(),
	}
	raw, err := legacy.Marshal()
	assert.Nil(t, err)

	var got CreateMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, legacy, &got)
	assert.Equal(t, "", got.memo())

	trailing := append(append([]byte(nil), raw...), 1, 2)
	assert.IsErr(t, errors.ErrInput, got.Unmarshal(trailing))

	var v2 CreateV2Msg
	assert.IsErr(t, errors.ErrType, v2.Unmarshal(raw))
}

func TestMsgPaths(t *testing.T) {
	assert.Equal(t, "multisig/create", (&CreateMsg{}).Path())
	assert.Equal(t, "multisig/create_v2", (&CreateV2Msg{}).Path())
	assert.Equal(t, "multisig/create_compressed", (&CreateCompressedMsg{}).Path())
}
