/*
Package compress implements a Merkle tree backed store for compressed
accounts.

A compressed account is not stored directly in the application state.
Instead its leaf is appended to a state tree and its address is inserted
into an address tree. Both are tendermint iavl trees kept outside of the
application store. Only the hash roots of both trees are recorded in the
application state, so that clients can prove facts about the trees against
a root the chain knows.

Creating a compressed account is a two step process. During the
transaction, the caller proves that the new address is vacant using an
absence proof against a recent address tree root, and the new leaf is put
into an output queue stored in the application state. At the end of the
block, Flush drains the queue into the trees and records the new roots.
Because the queue lives in the application state, a failed transaction
never leaves a queued leaf behind.
*/
package compress
