// seed-clients registers API clients for the talentflow HTTP API.
//
// Usage:
//
//	DATABASE_URL=postgres://... go run ./cmd/tools/seed-clients \
//	    -name "hr-frontend" -permissions "jobs:*,candidates:*,assessments:*"
//
// Prints the generated API key once; it is stored as-is and cannot be
// recovered later.
package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	var name string
	var permissions string
	var deactivate string
	var list bool
	flag.StringVar(&name, "name", "", "Client name to register")
	flag.StringVar(&permissions, "permissions", "jobs:read,candidates:read,assessments:read", "Comma-separated permission scopes")
	flag.StringVar(&deactivate, "deactivate", "", "Deactivate the client with this name instead of creating one")
	flag.BoolVar(&list, "list", false, "List existing clients and exit")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	switch {
	case list:
		listClients(db)
	case deactivate != "":
		deactivateClient(db, deactivate)
	case name != "":
		createClient(db, name, permissions)
	default:
		log.Fatal("provide -name, -deactivate or -list")
	}
}

func createClient(db *sql.DB, name, permissions string) {
	perms := []string{}
	for _, p := range strings.Split(permissions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}

	permsJSON, err := json.Marshal(perms)
	if err != nil {
		log.Fatalf("failed to marshal permissions: %v", err)
	}

	apiKey := generateKey()

	q := `INSERT INTO api_clients (name, api_key, permissions) VALUES ($1, $2, $3) RETURNING id`
	var id int
	if err := db.QueryRow(q, name, apiKey, permsJSON).Scan(&id); err != nil {
		log.Fatalf("failed to insert client: %v", err)
	}

	log.Printf("Created client %q (id=%d, permissions=%s)", name, id, perms)
	fmt.Printf("API key: %s\n", apiKey)
}

func deactivateClient(db *sql.DB, name string) {
	res, err := db.Exec(`UPDATE api_clients SET is_active = FALSE WHERE name = $1`, name)
	if err != nil {
		log.Fatalf("failed to deactivate client: %v", err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		log.Fatalf("no client named %q", name)
	}
	log.Printf("Deactivated client %q", name)
}

func listClients(db *sql.DB) {
	rows, err := db.Query(`SELECT id, name, is_active, permissions, created_at FROM api_clients ORDER BY id`)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		var active bool
		var permsJSON []byte
		var created sql.NullTime
		if err := rows.Scan(&id, &name, &active, &permsJSON, &created); err != nil {
			log.Printf("row scan error: %v", err)
			continue
		}

		var perms []string
		if err := json.Unmarshal(permsJSON, &perms); err != nil {
			log.Printf("bad permissions for client %d: %v", id, err)
		}

		status := "active"
		if !active {
			status = "inactive"
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", id, name, status, strings.Join(perms, ","))
	}

	if err := rows.Err(); err != nil {
		log.Fatalf("rows error: %v", err)
	}
}

func generateKey() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}
	return "tf_" + hex.EncodeToString(buf)
}
