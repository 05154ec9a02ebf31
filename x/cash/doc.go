/*
Package cash is the ledger of the application. It keeps one wallet per
holder and asset and is the only code that changes balances.

A wallet has an authority, the only address that may debit it. For user
wallets this is the holder itself. A vault is a wallet whose holder is a
derived address and whose authority is the record (escrow, listing, pool)
that owns it. Derived addresses have no private key, so a vault can only be
debited by the extension owning the record.

Wallets opened explicitly lock a rent of the native asset, paid by the
opener and refunded when the wallet is closed.
*/
package cash
