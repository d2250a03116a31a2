// activity/schema.go
package activity

// Schema is created on startup and never migrated. raw_data holds the
// event payload serialized to JSON text.
const Schema = `
CREATE TABLE IF NOT EXISTS activity (
	timestamp TEXT,
	event_type TEXT,
	description TEXT,
	raw_data TEXT
);
`
