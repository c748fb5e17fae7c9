package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is Google Translate's text-to-speech URL
const DefaultEndpoint = "https://translate.google.com/translate_tts"

const ttsRequestTimeout = 10 * time.Second

// queueSize bounds pending pronunciations; requests beyond it are dropped
const queueSize = 32

// Options configures a TTSService
type Options struct {
	AudioDir string
	Language string
	Endpoint string
	// Player is the command line that plays an MP3 file; the file path is
	// appended as the last argument. Empty disables playback.
	Player string
	// RequestsPerMinute caps remote fetches; zero means unlimited
	RequestsPerMinute int
	Client            *http.Client
}

// ErrRateLimited is returned when a fetch would exceed the request budget
var ErrRateLimited = errors.New("text-to-speech rate limit reached")

// TTSService caches spoken terms as MP3 files and plays them.
// Pronunciations are handled one at a time, in request order, by a single
// background worker.
type TTSService struct {
	audioDir string
	language string
	endpoint string
	player   []string
	client   *http.Client
	limiter  *RateLimiter
	log      *zap.Logger

	playMu   sync.Mutex
	play     func(ctx context.Context, path string) error

	mu        sync.Mutex
	closed    bool
	queue     chan string
	startOnce sync.Once
	inflight  sync.WaitGroup
}

// NewTTSService creates a new TTS service
func NewTTSService(opts Options, log *zap.Logger) *TTSService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: ttsRequestTimeout}
	}

	s := &TTSService{
		audioDir: opts.AudioDir,
		language: opts.Language,
		endpoint: opts.Endpoint,
		player:   strings.Fields(opts.Player),
		client:   opts.Client,
		limiter:  NewRateLimiter(opts.RequestsPerMinute, time.Minute),
		log:      log.Named("audio"),
		queue:    make(chan string, queueSize),
	}
	s.play = s.runPlayer
	return s
}

// Pronounce queues text to be spoken in the background. Failures are
// logged. Calls after Close are ignored.
func (s *TTSService) Pronounce(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.startOnce.Do(func() { go s.worker() })

	s.inflight.Add(1)
	select {
	case s.queue <- text:
	default:
		s.inflight.Done()
		s.log.Warn("pronunciation queue full, dropping", zap.String("text", text))
	}
}

func (s *TTSService) worker() {
	for text := range s.queue {
		if err := s.Speak(context.Background(), text); err != nil {
			s.log.Warn("pronunciation failed", zap.String("text", text), zap.Error(err))
		}
		s.inflight.Done()
	}
}

// Wait blocks until every queued pronunciation has finished
func (s *TTSService) Wait() {
	s.inflight.Wait()
}

// Close stops accepting pronunciations and waits for queued ones to finish
func (s *TTSService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

// Speak fetches the audio for text if needed and plays it
func (s *TTSService) Speak(ctx context.Context, text string) error {
	filename, err := s.GenerateAudioFile(ctx, text)
	if err != nil {
		return err
	}
	if len(s.player) == 0 {
		s.log.Debug("no audio player configured", zap.String("file", filename))
		return nil
	}

	s.playMu.Lock()
	defer s.playMu.Unlock()

	if err := s.play(ctx, filepath.Join(s.audioDir, filename)); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}

// GenerateAudioFile converts text to speech and saves it as MP3.
// Returns the filename (not full path); cached files are reused.
func (s *TTSService) GenerateAudioFile(ctx context.Context, text string) (string, error) {
	filename := AudioFilename(text)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	if err := s.generateUsingGoogleTTS(ctx, text, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	s.log.Debug("audio cached", zap.String("file", filename))
	return filename, nil
}

// AudioFilename maps a term to its cache file name
func AudioFilename(text string) string {
	sanitized := strings.ToLower(strings.TrimSpace(text))
	sanitized = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, sanitized)
	return fmt.Sprintf("word_%s.mp3", sanitized)
}

func (s *TTSService) generateUsingGoogleTTS(ctx context.Context, text, outputPath string) error {
	if !s.limiter.Allow(endpointHost(s.endpoint)) {
		return ErrRateLimited
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// a failed download must not leave a truncated cache entry
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return os.Rename(tmp.Name(), outputPath)
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

func (s *TTSService) runPlayer(ctx context.Context, path string) error {
	if len(s.player) == 0 {
		return errors.New("no player configured")
	}
	args := append(append([]string{}, s.player[1:]...), path)
	cmd := exec.CommandContext(ctx, s.player[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.player[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
