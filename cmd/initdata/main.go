// Command initdata seeds a running server with a demo account, fake notes and
// the activity those writes produce.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"

	"note-sync/internal/services/notes"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/sync/errgroup"
)

var (
	baseURL     = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	email       = flag.String("email", env("EMAIL", "demo@example.com"), "User e-mail")
	pass        = flag.String("pass", env("PASSWORD", "Password123"), "User password")
	nNotes      = flag.Int("n", 200, "How many notes to create")
	concurrency = flag.Int("c", 8, "Parallel requests")
	seed        = flag.Int64("seed", 0, "Fake data seed, 0 for random")
)

var tagPool = []string{"europe", "summer", "urgent", "later", "reading", "family", "budget", "ideas", "fitness", "recipes"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type api struct {
	client *http.Client
	token  string
}

func (a *api) call(ctx context.Context, method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, *baseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	faker := gofakeit.New(*seed)
	a := &api{client: http.DefaultClient}

	fmt.Printf("Init account %s (notes=%d) on %s\n", *email, *nNotes, *baseURL)

	if err := a.login(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	reqs := make([]notes.CreateNoteRequest, *nNotes)
	for i := range reqs {
		reqs[i] = fakeNote(faker)
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)
	for _, req := range reqs {
		g.Go(func() error {
			var resp notes.NoteResponse
			if _, err := a.call(gctx, http.MethodPost, "/api/v1/notes", req, &resp); err != nil {
				return err
			}
			if n := created.Add(1); n%50 == 0 {
				fmt.Printf("  … %d/%d\n", n, *nNotes)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	var stats notes.Stats
	if _, err := a.call(ctx, http.MethodGet, "/api/v1/stats", nil, &stats); err == nil {
		fmt.Printf("✔ done: %d notes, %d favorites, %d categories\n",
			stats.NotesCount, stats.FavoriteNotesCount, stats.CategoriesCount)
	}
}

// login signs up, falling back to sign-in for an existing account.
func (a *api) login(ctx context.Context) error {
	creds := map[string]string{"email": *email, "password": *pass}
	var resp struct {
		Token string `json:"token"`
	}

	if _, err := a.call(ctx, http.MethodPost, "/api/v1/auth/sign-up", creds, &resp); err == nil {
		fmt.Println("• signed-up new user")
		a.token = resp.Token
		return nil
	}
	if _, err := a.call(ctx, http.MethodPost, "/api/v1/auth/sign-in", creds, &resp); err != nil {
		return err
	}
	fmt.Println("• signed-in existing user")
	a.token = resp.Token
	return nil
}

func fakeNote(f *gofakeit.Faker) notes.CreateNoteRequest {
	cats := notes.Categories()
	tags := make([]string, f.Number(0, 3))
	for i := range tags {
		tags[i] = tagPool[f.Number(0, len(tagPool)-1)]
	}
	return notes.CreateNoteRequest{
		Title:      f.Sentence(3),
		Content:    f.Paragraph(1, 3, 40, " "),
		Category:   cats[f.Number(0, len(cats)-1)].Value,
		Tags:       tags,
		IsFavorite: f.Number(1, 5) == 1,
		Color:      f.HexColor(),
	}
}
