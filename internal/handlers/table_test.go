package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/session/sessiontest"
)

func TestCreateTable(t *testing.T) {
	ctx := context.Background()

	t.Run("table and fields in one query", func(t *testing.T) {
		sql := "DEFINE TABLE IF NOT EXISTS person TYPE NORMAL SCHEMAFULL;\n" +
			"DEFINE FIELD IF NOT EXISTS name ON TABLE person TYPE string;\n" +
			"DEFINE FIELD IF NOT EXISTS age ON TABLE person TYPE int ASSERT $value >= 0;"
		s := &sessiontest.Session{}
		s.On("Query", sql, noVars).Return(results(sessiontest.OK(nil), sessiontest.OK(nil), sessiontest.OK(nil)), nil)

		items, err := createTable(ctx, newCall(s, Params{
			ParamTable:   "person",
			ParamOptions: map[string]any{"ifNotExists": true, "tableType": "normal", "schemaMode": "schemafull"},
			ParamFields:  `[{"name":"name","type":"string"},{"name":"age","type":"int","assert":"$value >= 0"}]`,
		}))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "person", items[0].JSON["table"])
		assert.Equal(t, 2, items[0].JSON["fields"])
		s.AssertExpectations(t)
	})

	t.Run("schema and comment from options", func(t *testing.T) {
		sql := "DEFINE TABLE person SCHEMAFULL COMMENT \"people we know\";\n" +
			"DEFINE FIELD name ON TABLE person TYPE string;"
		s := &sessiontest.Session{}
		s.On("Query", sql, noVars).Return(results(sessiontest.OK(nil), sessiontest.OK(nil)), nil)

		items, err := createTable(ctx, newCall(s, Params{
			ParamTable: "person",
			ParamOptions: map[string]any{
				"schemaMode": "schemafull",
				"comment":    "people we know",
				"schema":     []any{map[string]any{"name": "name", "type": "string"}},
			},
		}))
		require.NoError(t, err)
		assert.Equal(t, 1, items[0].JSON["fields"])
		s.AssertExpectations(t)
	})

	t.Run("server failure", func(t *testing.T) {
		s := &sessiontest.Session{}
		s.On("Query", "DEFINE TABLE person;", noVars).Return(results(sessiontest.ERR("The table 'person' already exists")), nil)

		_, err := createTable(ctx, newCall(s, Params{ParamTable: "person"}))
		assert.True(t, IsKind(err, KindServer))
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("unknown schema mode", func(t *testing.T) {
		_, err := createTable(ctx, newCall(&sessiontest.Session{}, Params{ParamTable: "person", ParamOptions: `{"schemaMode":"strict"}`}))
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("field without name", func(t *testing.T) {
		_, err := createTable(ctx, newCall(&sessiontest.Session{}, Params{ParamTable: "person", ParamFields: `[{"type":"string"}]`}))
		assert.True(t, IsKind(err, KindValidation))
	})
}

func TestDeleteTable(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Query", "USE NS test DB app; REMOVE TABLE IF EXISTS person", noVars).Return(results(sessiontest.OK(nil), sessiontest.OK(nil)), nil)

	c := withContext(newCall(s, Params{ParamTable: "person", ParamOptions: map[string]any{"ifExists": true}}))
	items, err := deleteTable(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, true, items[0].JSON["deleted"])
	s.AssertExpectations(t)
}

func TestListTables(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Query", "INFO FOR DB", noVars).Return(results(sessiontest.OK(map[string]any{
		"analyzers": map[string]any{},
		"tables": map[string]any{
			"person": "DEFINE TABLE person TYPE NORMAL SCHEMAFULL PERMISSIONS NONE",
			"animal": "DEFINE TABLE animal TYPE ANY SCHEMALESS PERMISSIONS NONE",
		},
	})), nil)

	items, err := listTables(context.Background(), newCall(s, Params{}))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "animal", items[0].JSON["name"])
	assert.Equal(t, "person", items[1].JSON["name"])
	assert.Equal(t, "SCHEMAFULL", items[1].JSON["schema"])
	assert.Equal(t, "NORMAL", items[1].JSON["type"])
}

func TestListTablesLegacyKeys(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Query", "INFO FOR DB", noVars).Return(results(sessiontest.OK(map[string]any{
		"tb": map[string]any{"person": "DEFINE TABLE person SCHEMALESS"},
	})), nil)

	items, err := listTables(context.Background(), newCall(s, Params{}))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "DEFINE TABLE person SCHEMALESS", items[0].JSON["definition"])
}

func TestGetTable(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Query", "INFO FOR TABLE person", noVars).Return(results(sessiontest.OK(map[string]any{
		"events": map[string]any{"audit": "DEFINE EVENT audit ON person WHEN true THEN (CREATE log)"},
		"fields": map[string]any{
			"name": "DEFINE FIELD name ON person TYPE string PERMISSIONS FULL",
		},
		"indexes": map[string]any{
			"idx_name": "DEFINE INDEX idx_name ON person FIELDS name UNIQUE",
		},
		"tables": map[string]any{},
	})), nil)

	items, err := getTable(context.Background(), newCall(s, Params{ParamTable: "person"}))
	require.NoError(t, err)
	require.Len(t, items, 1)

	fields := items[0].JSON["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "string", fields[0].(map[string]any)["type"])

	indexes := items[0].JSON["indexes"].([]any)
	require.Len(t, indexes, 1)
	assert.Equal(t, "unique", indexes[0].(map[string]any)["type"])

	assert.Contains(t, items[0].JSON["events"], "audit")
}

func TestGetTableUnexpectedResponse(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Query", "INFO FOR TABLE person", noVars).Return(results(sessiontest.OK("nope")), nil)

	_, err := getTable(context.Background(), newCall(s, Params{ParamTable: "person"}))
	assert.True(t, IsKind(err, KindServer))
}

func TestGetTableEmptyResponse(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Query", "INFO FOR TABLE person", noVars).Return(results(sessiontest.OK(nil)), nil)

	_, err := getTable(context.Background(), newCall(s, Params{ParamTable: "person"}))
	assert.True(t, IsKind(err, KindServer))
	assert.ErrorIs(t, err, constants.ErrEmptyResponse)
}
