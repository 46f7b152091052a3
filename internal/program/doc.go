// Package program binds the record core to the host runtime.
//
// A program decodes an instruction's arguments, loads the snapshots at the
// declared accounts, runs the pure record or tally transition and writes
// the result back through the host frame. The host commits or rolls back
// the whole instruction, so a failed transition leaves every account as it
// was.
//
// Account layout per instruction:
//
//	todo.create  [todo]            args: authority, title, description, payer?
//	todo.update  [todo]            args: authority, title?, description?, active?
//	todo.delete  [todo]            args: authority
//	vote.create  [vote]            args: authority, name, payer?
//	vote.update  [vote]            args: authority, name?
//	vote.cast    [vote, receipt]   args: voter, payer?
//	vote.delete  [vote]            args: authority
//
// Identities are hex text. The authority (or voter) must sign the
// instruction; payer defaults to it.
package program
