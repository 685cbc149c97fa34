/*
Package campaign implements a crowdfunding escrow.

A campaign is created by its authority with a goal and a deadline.
It is stored at an address derived from the authority and a caller
chosen campaign id, and the same derived address owns the escrow
wallet in x/cash.

Donations are accepted until the deadline (inclusive). Once the
deadline has passed and the total raised reaches the goal, the
authority can withdraw the whole escrow balance. There is no refund
path for campaigns that miss their goal.
*/
package campaign
