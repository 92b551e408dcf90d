package catalog

import (
	"database/sql"
	"fmt"

	"github.com/adewale/olsen/pkg/models"
)

// ReplaceGroups atomically discards every duplicate group and replaces them
// with the matcher's fresh output. Groups are derived state recomputed in
// full on every scan (spec.md §4.6), so there is no incremental group
// update: delete all, re-insert, reassign membership and group_id.
func (c *Catalog) ReplaceGroups(groups []models.DuplicateGroup) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin group replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE photos SET group_id = NULL"); err != nil {
		return fmt.Errorf("failed to clear photo group assignments: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM group_members"); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM groups"); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}

	memberStmt, err := tx.Prepare("INSERT INTO group_members (group_id, photo_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare group member insert: %w", err)
	}
	defer memberStmt.Close()

	photoStmt, err := tx.Prepare("UPDATE photos SET group_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare photo group update: %w", err)
	}
	defer photoStmt.Close()

	for _, g := range groups {
		var sot interface{}
		if g.SourceOfTruth != 0 {
			sot = g.SourceOfTruth
		}
		result, err := tx.Exec("INSERT INTO groups (confidence, sot_photo_id) VALUES (?, ?)", g.Confidence.String(), sot)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		groupID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read new group id: %w", err)
		}

		for _, photoID := range g.Members {
			if _, err := memberStmt.Exec(groupID, photoID); err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
			if _, err := photoStmt.Exec(groupID, photoID); err != nil {
				return fmt.Errorf("failed to set photo group_id: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListGroups returns every duplicate group with its membership populated.
func (c *Catalog) ListGroups() ([]models.DuplicateGroup, error) {
	rows, err := c.db.Query("SELECT id, confidence, sot_photo_id FROM groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.DuplicateGroup
	for rows.Next() {
		var g models.DuplicateGroup
		var confidence string
		var sot sql.NullInt64
		if err := rows.Scan(&g.ID, &confidence, &sot); err != nil {
			return nil, err
		}
		g.Confidence = models.ConfidenceFromString(confidence)
		if sot.Valid {
			g.SourceOfTruth = sot.Int64
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := c.groupMembers(groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

func (c *Catalog) groupMembers(groupID int64) ([]int64, error) {
	rows, err := c.db.Query("SELECT photo_id FROM group_members WHERE group_id = ? ORDER BY photo_id", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var photoID int64
		if err := rows.Scan(&photoID); err != nil {
			return nil, err
		}
		members = append(members, photoID)
	}
	return members, rows.Err()
}
