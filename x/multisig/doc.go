/*
Package multisig implements the creation of multisig accounts.

A multisig is a set of members with permissions and a threshold of
approvals required to execute a transaction on behalf of the multisig.
This package only creates multisigs. Proposals, voting and execution are
implemented elsewhere.

The address of a multisig is derived from a one time create key that must
sign the creation transaction. Nobody else can claim that address in advance.

There are three creation messages:

	CreateMsg            multisig/create             regular account, no fee (deprecated)
	CreateV2Msg          multisig/create_v2          regular account, creation fee
	CreateCompressedMsg  multisig/create_compressed  compressed account, creation fee

All of them are processed by the same pipeline. Members are sorted by key,
the address is derived, the multisig is checked against the configured
Policy and stored. The creation fee, configured together with the treasury in
ProgramConfig, is paid last.

Compressed multisigs are stored in a compress.Store. The creator must
provide a proof that the address is not taken yet.
*/
package multisig
