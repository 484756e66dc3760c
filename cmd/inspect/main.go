package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Read-only browser for the chat store. Scans a key prefix and renders
// one row per record, so a developer can eyeball users, conversations
// and messages without wiring a client.

type inspectRow struct {
	key    string
	kind   string
	at     string
	id     string
	detail string
}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (user:, convo:, msg:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	fmt.Println(color.New(color.BgBlack, color.FgGreen).
		Render(fmt.Sprintf(" chatline store : %s ", *prefix)))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				row := toRow(string(item.Key()), v)
				table.Append([]string{row.key, row.kind, row.at, row.id, row.detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// toRow decodes a record by its key family. Index keys (email and pair
// lookups) hold a bare id, the rest are JSON documents.
func toRow(key string, value []byte) inspectRow {
	row := inspectRow{key: key, kind: "RAW", detail: truncate(string(value), 60)}

	switch {
	case strings.HasPrefix(key, "msg:"):
		var record struct {
			ID        string    `json:"id"`
			SenderID  string    `json:"sender_id"`
			Content   string    `json:"content"`
			CreatedAt time.Time `json:"created_at"`
		}
		if err := json.Unmarshal(value, &record); err != nil {
			return row
		}
		row.kind = "MESSAGE"
		row.at = record.CreatedAt.Format("15:04:05")
		row.id = shortID(record.ID)
		row.detail = fmt.Sprintf("%s: %s", shortID(record.SenderID), truncate(record.Content, 50))
	case strings.HasPrefix(key, "convo:id:"):
		var record struct {
			ID           string    `json:"id"`
			Participants []string  `json:"participants"`
			UpdatedAt    time.Time `json:"updated_at"`
		}
		if err := json.Unmarshal(value, &record); err != nil {
			return row
		}
		row.kind = "CONVO"
		row.at = record.UpdatedAt.Format("15:04:05")
		row.id = shortID(record.ID)
		row.detail = strings.Join(record.Participants, " <-> ")
	case strings.HasPrefix(key, "convo:pair:"):
		row.kind = "INDEX"
		row.id = shortID(string(value))
	case strings.HasPrefix(key, "user:id:"):
		var record struct {
			ID        string    `json:"id"`
			Name      string    `json:"name"`
			Email     string    `json:"email"`
			CreatedAt time.Time `json:"created_at"`
		}
		if err := json.Unmarshal(value, &record); err != nil {
			return row
		}
		row.kind = "USER"
		row.at = record.CreatedAt.Format("15:04:05")
		row.id = shortID(record.ID)
		row.detail = fmt.Sprintf("%s <%s>", record.Name, record.Email)
	case strings.HasPrefix(key, "user:email:"):
		row.kind = "INDEX"
		row.id = shortID(string(value))
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	return badger.Open(opts)
}
