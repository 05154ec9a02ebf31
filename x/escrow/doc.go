/*
Package escrow implements a bilateral exchange between a maker and a taker.

The maker offers an amount of one asset in exchange for an amount of another
asset. Offered funds are deposited into a vault: a wallet held by an address
derived from the maker and a seed, debitable only by the escrow address. No
private key exists for either address, so the funds can be released only by
this extension.

An escrow is resolved exactly once, either taken or refunded. A resolved
escrow is deleted together with its vault.
*/
package escrow
