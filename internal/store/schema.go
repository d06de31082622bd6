package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// BlobsColumns holds the columns for the "blobs" table.
	BlobsColumns = []*schema.Column{
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "data", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// BlobsTable holds the schema information for the "blobs" table.
	BlobsTable = &schema.Table{
		Name:       "blobs",
		Columns:    BlobsColumns,
		PrimaryKey: []*schema.Column{BlobsColumns[0]},
	}

	// CompletionEventsColumns holds the columns for the "completion_events" table.
	CompletionEventsColumns = []*schema.Column{
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "type", Type: field.TypeString},
		{Name: "module_id", Type: field.TypeString, Nullable: true},
		{Name: "path_id", Type: field.TypeString},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "score", Type: field.TypeFloat64, Nullable: true},
		{Name: "time_spent", Type: field.TypeInt, Nullable: true},
	}
	// CompletionEventsTable holds the schema information for the "completion_events" table.
	CompletionEventsTable = &schema.Table{
		Name:       "completion_events",
		Columns:    CompletionEventsColumns,
		PrimaryKey: []*schema.Column{CompletionEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "completionevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{CompletionEventsColumns[5]},
			},
			{
				Name:    "completionevent_path_id",
				Unique:  false,
				Columns: []*schema.Column{CompletionEventsColumns[4]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		BlobsTable,
		CompletionEventsTable,
	}
)
