/*
Package marketplace implements fixed price sales of assets.

A marketplace is created by its admin with a fee rate and a treasury. A maker
lists an item by depositing it into a vault held by the listing address. A
buyer purchases the listing by paying the price in the native asset: the fee
goes to the treasury, the rest to the maker, and the item to the buyer.
*/
package marketplace
