package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"soundcrate/core/library"
	"soundcrate/core/metadata"
	"soundcrate/core/player"
	"soundcrate/model"
)

var (
	playServerURL string
	playEmail     string
	playPassword  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play your library from the terminal",
	Long:  `Signs in to a running server, loads your track list, and plays it locally.`,
	Run: func(cmd *cobra.Command, args []string) {
		if playEmail == "" || playPassword == "" {
			log.Fatal("--email and --password are required")
		}

		session, err := login(playServerURL, playEmail, playPassword)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		fmt.Printf("Signed in as %s\n", session.User.Email)

		engine := player.NewEngine(player.NewBeepElement())
		defer engine.Close()

		lib := library.NewLibrary(&apiLister{base: playServerURL, token: session.Token}, engine)
		ctx := context.Background()
		if err := lib.HandleSessionChange(ctx, session.User); err != nil {
			log.Fatalf("Failed to load library: %v", err)
		}

		tracks := lib.Tracks()
		if len(tracks) == 0 {
			fmt.Println("Your library is empty. Upload something first.")
			return
		}
		printTracks(tracks)

		runPlayerREPL(ctx, engine, lib)
	},
}

type loginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func login(base, email, password string) (*loginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(base+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result loginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// apiLister fetches the signed-in user's tracks over the HTTP API. The
// token scopes the listing, so the user id argument is unused.
type apiLister struct {
	base  string
	token string
}

func (l *apiLister) List(ctx context.Context, userID int64) ([]*model.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.base+"/api/tracks", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var payload struct {
		Tracks []*model.Track `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Tracks, nil
}

func printTracks(tracks []model.Track) {
	fmt.Printf("\n%d tracks:\n", len(tracks))
	for i, t := range tracks {
		duration := "-:--"
		if t.Duration != nil {
			duration = metadata.FormatTime(float64(*t.Duration))
		}
		fmt.Printf("%3d. %s - %s [%s]\n", i+1, t.Artist, t.Title, duration)
	}
}

func runPlayerREPL(ctx context.Context, engine *player.Engine, lib *library.Library) {
	fmt.Println("\nCommands: play <n>, toggle, next, prev, seek <s>, vol <0-100>, list, status, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "play":
			if len(fields) < 2 {
				fmt.Println("Usage: play <n>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			tracks := lib.Tracks()
			if err != nil || n < 1 || n > len(tracks) {
				fmt.Println("No such track")
				continue
			}
			engine.PlayFromPlaylist(tracks, n-1)
			engine.Play()

		case "toggle":
			engine.TogglePlayPause()

		case "next":
			engine.SkipToNext()
			engine.Play()

		case "prev":
			engine.SkipToPrevious()
			engine.Play()

		case "seek":
			if len(fields) < 2 {
				fmt.Println("Usage: seek <seconds>")
				continue
			}
			if seconds, err := strconv.ParseFloat(fields[1], 64); err == nil {
				engine.SeekTo(seconds)
			}

		case "vol":
			if len(fields) < 2 {
				fmt.Println("Usage: vol <0-100>")
				continue
			}
			if percent, err := strconv.Atoi(fields[1]); err == nil {
				engine.SetVolume(float64(percent) / 100)
			}

		case "list":
			printTracks(lib.Tracks())

		case "status":
			printStatus(engine.Snapshot())

		case "refresh":
			if err := lib.Refresh(ctx); err != nil {
				fmt.Printf("Refresh failed: %v\n", err)
			}

		case "quit", "exit":
			return

		default:
			fmt.Println("Unknown command")
		}

		// Give the element a beat to report before the next prompt.
		time.Sleep(100 * time.Millisecond)
	}
}

func printStatus(state player.State) {
	if state.CurrentTrack == nil {
		fmt.Println("Nothing loaded")
		return
	}
	verb := "Paused"
	switch {
	case state.IsLoading:
		verb = "Loading"
	case state.IsPlaying:
		verb = "Playing"
	}
	fmt.Printf("%s: %s - %s  %s / %s  vol %d%%\n",
		verb,
		state.CurrentTrack.Artist,
		state.CurrentTrack.Title,
		metadata.FormatTime(state.Position),
		metadata.FormatTime(state.Duration),
		int(state.Volume*100))
}

func init() {
	playCmd.Flags().StringVar(&playServerURL, "server", "http://localhost:8080", "server base URL")
	playCmd.Flags().StringVar(&playEmail, "email", "", "account email")
	playCmd.Flags().StringVar(&playPassword, "password", "", "account password")
	rootCmd.AddCommand(playCmd)
}
