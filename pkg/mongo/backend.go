package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/regdesk/pkg/records"
)

const (
	tablesCollection = "record_tables"
	rowsCollection   = "record_rows"
)

type tableDoc struct {
	Name string `bson:"_id"`
	Last int    `bson:"last"`
}

type rowDoc struct {
	Table    string   `bson:"table"`
	Position int      `bson:"position"`
	Cells    []string `bson:"cells"`
}

// Backend stores record tables in a MongoDB database.
type Backend struct {
	tables *mongo.Collection
	rows   *mongo.Collection
}

var _ records.Backend = (*Backend)(nil)

// NewBackend prepares the collections and their unique (table, position) index.
func NewBackend(ctx context.Context, db *mongo.Database) (*Backend, error) {
	b := &Backend{
		tables: db.Collection(tablesCollection),
		rows:   db.Collection(rowsCollection),
	}
	_, err := b.rows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "table", Value: 1}, {Key: "position", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo: create row index: %w", err)
	}
	return b, nil
}

func (b *Backend) OpenTable(ctx context.Context, name string) (records.Table, error) {
	var doc tableDoc
	err := b.tables.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, records.ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: open table %q: %w", name, err)
	}
	return b.table(name), nil
}

// CreateTable registers name. An existing table is returned as is.
func (b *Backend) CreateTable(ctx context.Context, name string) (records.Table, error) {
	_, err := b.tables.InsertOne(ctx, tableDoc{Name: name})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("mongo: create table %q: %w", name, err)
	}
	return b.table(name), nil
}

func (b *Backend) table(name string) *Table {
	return &Table{backend: b, name: name}
}

// Table is one logical table inside record_rows.
type Table struct {
	backend *Backend
	name    string
}

var _ records.Table = (*Table)(nil)

func (t *Table) Name() string { return t.name }

// Rows returns rows in position order, with empty rows filling any gaps.
func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	cur, err := t.backend.rows.Find(ctx,
		bson.D{{Key: "table", Value: t.name}},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo: read %q: %w", t.name, err)
	}

	var docs []rowDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode %q: %w", t.name, err)
	}

	var out [][]string
	for _, d := range docs {
		for len(out) < d.Position-1 {
			out = append(out, []string{})
		}
		cells := d.Cells
		if cells == nil {
			cells = []string{}
		}
		out = append(out, cells)
	}
	return out, nil
}

func (t *Table) WriteRow(ctx context.Context, pos int, values []string) error {
	if pos < 1 {
		return records.ErrRowNotFound
	}
	// Keep the append counter ahead of explicitly written rows.
	_, err := t.backend.tables.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: t.name}},
		bson.D{{Key: "$max", Value: bson.D{{Key: "last", Value: pos}}}},
	)
	if err != nil {
		return fmt.Errorf("mongo: write %q row %d: %w", t.name, pos, err)
	}
	return t.put(ctx, pos, values)
}

func (t *Table) AppendRow(ctx context.Context, values []string) error {
	var doc tableDoc
	err := t.backend.tables.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: t.name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "last", Value: 1}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return records.ErrTableNotFound
	}
	if err != nil {
		return fmt.Errorf("mongo: append to %q: %w", t.name, err)
	}
	return t.put(ctx, doc.Last, values)
}

func (t *Table) put(ctx context.Context, pos int, values []string) error {
	if values == nil {
		values = []string{}
	}
	_, err := t.backend.rows.UpdateOne(ctx,
		bson.D{{Key: "table", Value: t.name}, {Key: "position", Value: pos}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "cells", Value: values}}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: write %q row %d: %w", t.name, pos, err)
	}
	return nil
}
