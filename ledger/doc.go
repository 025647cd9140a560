/*
Package ledger owns the persisted contest aggregate: entries, tags and the
reference color.

Every mutation reads the current snapshot, builds a complete new
ContestState, persists it as one document and only then publishes it.
Readers always see either the old or the new aggregate, never a mix.
Subscribers are notified after a successful write.

Entry timestamps double as identifiers for tag operations. Entries
submitted in the same millisecond share an identifier and are all affected
by a tag operation naming it.
*/
package ledger
