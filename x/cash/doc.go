/*
Package cash keeps the coin balances of all accounts.

There is no logic in the coins, except that the balance of any coin may not
go below zero. Other extensions move funds through the Controller, for
example to charge the multisig creation fee from the creator to the
configured treasury.
*/
package cash
