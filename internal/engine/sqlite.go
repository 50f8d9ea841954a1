package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// LoadGraphSQLite loads a property graph from a SQLite database holding
// nodes(id, labels, props) and relationships(id, type, start_id, end_id,
// props) tables. Labels and props columns hold JSON.
func LoadGraphSQLite(path, name string) (*Graph, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening graph database: %w", err)
	}
	defer db.Close()

	g := NewGraph(name)

	rows, err := db.Query(`SELECT id, labels, props FROM nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reading nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var labelsJSON, propsJSON string
		if err := rows.Scan(&id, &labelsJSON, &propsJSON); err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}
		labels, props, err := decodeEntity(labelsJSON, propsJSON)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		g.InsertNode(&Node{ID: id, Labels: labels, Props: props})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading nodes: %w", err)
	}

	relRows, err := db.Query(`SELECT id, type, start_id, end_id, props FROM relationships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reading relationships: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var id, startID, endID int64
		var relType, propsJSON string
		if err := relRows.Scan(&id, &relType, &startID, &endID, &propsJSON); err != nil {
			return nil, fmt.Errorf("scanning relationship row: %w", err)
		}
		_, props, err := decodeEntity("", propsJSON)
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", id, err)
		}
		if g.NodeByID(startID) == nil || g.NodeByID(endID) == nil {
			return nil, fmt.Errorf("relationship %d references unknown node (%d)-(%d)", id, startID, endID)
		}
		g.InsertRelationship(&Relationship{
			ID:      id,
			StartID: startID,
			EndID:   endID,
			Type:    relType,
			Props:   props,
		})
	}
	if err := relRows.Err(); err != nil {
		return nil, fmt.Errorf("reading relationships: %w", err)
	}

	return g, nil
}

func decodeEntity(labelsJSON, propsJSON string) ([]string, map[string]Value, error) {
	var labels []string
	if labelsJSON != "" {
		if err := json.Unmarshal([]byte(labelsJSON), &labels); err != nil {
			return nil, nil, fmt.Errorf("decoding labels: %w", err)
		}
	}
	props := make(map[string]any)
	if propsJSON != "" {
		if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
			return nil, nil, fmt.Errorf("decoding props: %w", err)
		}
	}
	return labels, normalizeProps(props), nil
}
