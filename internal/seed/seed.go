// Package seed holds the demo data every new session starts from.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"showcase/internal/catalog"
	"showcase/internal/chat"
	"showcase/internal/core"
	"showcase/internal/kanban"
	"showcase/internal/ledger"
)

//go:embed seed.yaml
var defaultSeed []byte

type Project struct {
	ID          int    `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Color       string `yaml:"color" json:"color"`
	Icon        string `yaml:"icon" json:"icon"`
	// Slug names the demo behind the project; empty means not available yet.
	Slug string `yaml:"slug" json:"slug,omitempty"`
}

func (p Project) Available() bool { return p.Slug != "" }

type product struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Price    string `yaml:"price"`
	Image    string `yaml:"image"`
}

type task struct {
	ID       int64  `yaml:"id"`
	Text     string `yaml:"text"`
	Priority string `yaml:"priority"`
	Bucket   string `yaml:"bucket"`
}

type transaction struct {
	ID          int64  `yaml:"id"`
	Type        string `yaml:"type"`
	Amount      string `yaml:"amount"`
	CategoryID  int    `yaml:"category"`
	Description string `yaml:"description"`
	Day         int    `yaml:"day"`
}

type message struct {
	ID     int64         `yaml:"id"`
	Text   string        `yaml:"text"`
	Author string        `yaml:"author"`
	Ago    time.Duration `yaml:"ago"`
}

// Data is the parsed seed file. The catalog is immutable and built once;
// the other demos are built per session from it.
type Data struct {
	Projects []Project
	catalog  *catalog.Catalog
	tasks    []task
	budget   core.Money
	cats     []ledger.Category
	txs      []transaction
	users    []chat.User
	messages []message
}

type file struct {
	Projects []Project `yaml:"projects"`
	Products []product `yaml:"products"`
	Tasks    []task    `yaml:"tasks"`
	Ledger   struct {
		Budget       string            `yaml:"budget"`
		Categories   []ledger.Category `yaml:"categories"`
		Transactions []transaction     `yaml:"transactions"`
	} `yaml:"ledger"`
	Chat struct {
		Users    []chat.User `yaml:"users"`
		Messages []message   `yaml:"messages"`
	} `yaml:"chat"`
}

// Default parses the embedded seed file.
func Default() (*Data, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file from disk, falling back to the embedded one when
// path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Data, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	products := make([]catalog.Product, 0, len(f.Products))
	for _, p := range f.Products {
		price, err := core.ParseMoney(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d price: %w", p.ID, err)
		}
		products = append(products, catalog.Product{
			ID:       p.ID,
			Name:     p.Name,
			Category: catalog.Category(p.Category),
			Price:    price,
			Image:    p.Image,
		})
	}
	cat, err := catalog.New(products)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	budget, err := core.ParseMoney(f.Ledger.Budget)
	if err != nil {
		return nil, fmt.Errorf("ledger budget: %w", err)
	}

	d := &Data{
		Projects: f.Projects,
		catalog:  cat,
		tasks:    f.Tasks,
		budget:   budget,
		cats:     f.Ledger.Categories,
		txs:      f.Ledger.Transactions,
		users:    f.Chat.Users,
		messages: f.Chat.Messages,
	}

	// Build each demo once so a bad seed fails at startup, not per session.
	now := time.Now()
	if _, err := d.Board(now); err != nil {
		return nil, err
	}
	if _, err := d.Ledger(now, budget); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Data) Catalog() *catalog.Catalog { return d.catalog }

// Budget is the seeded monthly budget.
func (d *Data) Budget() core.Money { return d.budget }

// Project looks up a project by id.
func (d *Data) Project(id int) (Project, bool) {
	for _, p := range d.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func (d *Data) Board(now time.Time) (kanban.Board, error) {
	tasks := make([]kanban.Task, 0, len(d.tasks))
	for _, t := range d.tasks {
		tasks = append(tasks, kanban.Task{
			ID:        t.ID,
			Text:      t.Text,
			Priority:  kanban.Priority(t.Priority),
			Bucket:    kanban.Bucket(t.Bucket),
			CreatedAt: now,
		})
	}
	b, err := kanban.NewBoard(tasks)
	if err != nil {
		return kanban.Board{}, fmt.Errorf("seed board: %w", err)
	}
	return b, nil
}

// Ledger builds the seeded ledger with its transactions dated in now's month.
func (d *Data) Ledger(now time.Time, budget core.Money) (ledger.Ledger, error) {
	l, err := ledger.New(d.cats, budget)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("seed ledger: %w", err)
	}
	txs := make([]ledger.Transaction, 0, len(d.txs))
	for _, t := range d.txs {
		amount, err := core.ParseMoney(t.Amount)
		if err != nil {
			return ledger.Ledger{}, fmt.Errorf("transaction %d amount: %w", t.ID, err)
		}
		day := min(max(t.Day, 1), now.Day())
		date := time.Date(now.Year(), now.Month(), day, 12, 0, 0, 0, now.Location())
		if date.After(now) {
			date = now
		}
		txs = append(txs, ledger.Transaction{
			ID:          t.ID,
			Type:        ledger.Type(t.Type),
			Amount:      amount,
			CategoryID:  t.CategoryID,
			Description: t.Description,
			Date:        date,
		})
	}
	l, err = l.Restore(txs...)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("seed ledger: %w", err)
	}
	return l, nil
}

// Room builds the chat room with message times relative to now.
func (d *Data) Room(now time.Time) chat.Room {
	history := make([]chat.Message, 0, len(d.messages))
	for _, m := range d.messages {
		history = append(history, chat.Message{
			ID:        m.ID,
			Text:      m.Text,
			Author:    m.Author,
			Timestamp: now.Add(-m.Ago),
			IsOwn:     m.Author == chat.Self,
		})
	}
	return chat.NewRoom(d.users, history)
}
