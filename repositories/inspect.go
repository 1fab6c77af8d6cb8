package repositories

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// InspectRow is one stored record rendered for humans.
type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

// Inspect scans the keys under prefix, at most limit of them, and describes each record.
// Unknown or undecodable values are reported raw instead of failing the scan.
func Inspect(db *badger.DB, prefix string, limit int) ([]InspectRow, error) {
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && len(rows) >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				rows = append(rows, describe(key, val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func describe(key string, val []byte) InspectRow {
	row := InspectRow{Key: key, Type: "RAW", Timestamp: "-", EntityID: "-",
		Detail: "Size: " + strconv.Itoa(len(val)) + " bytes"}

	switch {
	case strings.HasPrefix(key, messagePrefix):
		message, err := decodeMessage(val)
		if err != nil {
			return row
		}
		row.Type = "CHAT"
		row.Timestamp = message.CreatedAt.Format("2006-01-02 15:04:05")
		row.EntityID = message.ID.String()
		if message.IsGroup {
			row.Detail = fmt.Sprintf("%s -> group %s: %s", message.SenderID, message.GroupID, message.Content)
		} else {
			row.Detail = fmt.Sprintf("%s -> %s: %s", message.SenderID, message.ReceiverID, message.Content)
		}
	case strings.HasPrefix(key, groupPrefix):
		group, err := decodeGroup(val)
		if err != nil {
			return row
		}
		row.Type = "GROUP"
		row.Timestamp = group.CreatedAt.Format("2006-01-02 15:04:05")
		row.EntityID = string(group.ID)
		row.Detail = fmt.Sprintf("%q members=%s", group.Name, strings.Join(toStrings(group.Members), ","))
	case strings.HasPrefix(key, userPrefix):
		var disk DiskUser
		if err := json.Unmarshal(val, &disk); err != nil {
			return row
		}
		row.Type = "USER"
		row.EntityID = disk.ID
		row.Detail = fmt.Sprintf("%s (%s)", disk.Username, disk.CurrentTown)
	case strings.HasPrefix(key, "idx:"), strings.HasPrefix(key, messageIDPrefix):
		row.Type = "INDEX"
		row.Detail = "-> " + string(val)
	case strings.HasPrefix(key, groupMemberPrefix):
		row.Type = "INDEX"
	}
	return row
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
