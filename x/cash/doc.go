/*
Package cash implements the fund transfer primitive of the chain.

There is a single native currency. Every address may own a Wallet
holding a balance of it. Campaign escrow accounts are plain wallets
owned by a derived address, so donations and withdrawals are
MoveCoins calls.
*/
package cash
