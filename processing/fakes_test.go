package processing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mhdiwe/Viral/assets"
	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/render"
	"github.com/Mhdiwe/Viral/speech"
	"github.com/Mhdiwe/Viral/storage"
	"github.com/Mhdiwe/Viral/subtitles"
	"github.com/Mhdiwe/Viral/timeline"
)

type fakeSynth struct {
	errs   []error
	calls  int
	voices []string
	keys   []string
}

func (f *fakeSynth) Synthesize(_ context.Context, _, voice, apiKey string) ([]byte, error) {
	f.calls++
	f.voices = append(f.voices, voice)
	f.keys = append(f.keys, apiKey)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []byte("ID3-mp3"), nil
}

type fakeStore struct {
	mu        sync.Mutex
	uploadErr error
	uploads   map[string][]byte
	deleted   []string
}

func newFakeStore() *fakeStore { return &fakeStore{uploads: map[string][]byte{}} }

func (s *fakeStore) Upload(_ context.Context, name, _ string, data []byte) (storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return storage.Object{}, s.uploadErr
	}
	s.uploads[name] = data
	return storage.Describe("test-bucket", name), nil
}

func (s *fakeStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, name)
	delete(s.uploads, name)
	return nil
}

type fakeTranscriber struct {
	results []subtitles.RecognitionResult
	err     error
	uri     string
	lang    string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, uri, lang string) ([]subtitles.RecognitionResult, error) {
	f.uri, f.lang = uri, lang
	return f.results, f.err
}

type fakeProber struct {
	d   float64
	err error
}

func (f fakeProber) Duration(context.Context, []byte) (float64, error) { return f.d, f.err }

type fakeSource struct {
	assets []timeline.VisualAsset
	got    assets.Request
}

func (f *fakeSource) Fetch(_ context.Context, req assets.Request) ([]timeline.VisualAsset, error) {
	f.got = req
	return f.assets, nil
}

type fakeRenderer struct {
	render   render.Result
	statuses []render.Result
	specs    []timeline.RenderSpec
}

func (f *fakeRenderer) Render(_ context.Context, spec timeline.RenderSpec) (render.Result, error) {
	f.specs = append(f.specs, spec)
	return f.render, nil
}

func (f *fakeRenderer) Status(context.Context, string) (render.Result, error) {
	if len(f.statuses) == 0 {
		return render.Result{}, errors.New("no more statuses")
	}
	res := f.statuses[0]
	f.statuses = f.statuses[1:]
	return res, nil
}

var helloWords = []subtitles.RecognitionResult{{Alternatives: []subtitles.Alternative{{
	Transcript: "Hello world. Next sentence",
	Words: []subtitles.TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.5},
		{Text: "world.", Start: 0.5, End: 1.0},
		{Text: "Next", Start: 1.5, End: 1.8},
		{Text: "sentence", Start: 1.8, End: 2.4},
	},
}}}}

type harness struct {
	synth *fakeSynth
	store *fakeStore
	stt   *fakeTranscriber
	src   *fakeSource
	rend  *fakeRenderer
	p     *Pipeline
}

func newHarness(prober speech.Prober) *harness {
	h := &harness{
		synth: &fakeSynth{},
		store: newFakeStore(),
		stt:   &fakeTranscriber{results: helloWords},
		src:   &fakeSource{},
		rend:  &fakeRenderer{},
	}
	cfg := config.Default()
	p, err := NewPipeline(cfg, Deps{
		Synthesizer: h.synth,
		Store:       h.store,
		Transcriber: h.stt,
		Prober:      prober,
		Sources:     map[config.ImageSource]assets.Source{config.ImagesStock: h.src},
		Renderers:   map[config.RenderBackend]render.Renderer{config.RenderLocal: h.rend, config.RenderRemote: h.rend},
	})
	if err != nil {
		panic(err)
	}
	p.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	p.pollEvery = time.Millisecond
	h.p = p
	return h
}
