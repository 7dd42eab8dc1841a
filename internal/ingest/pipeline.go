package ingest

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"teatopics/internal/domain/build"
	"teatopics/internal/domain/config"
	domainerr "teatopics/internal/domain/errors"
	"teatopics/internal/domain/topic"
)

type Warning struct {
	Path string
	Msg  string
}

type Options struct {
	Path              string
	DefaultCollection string
	Categorizer       *Categorizer
	// RulesHash is folded into the fingerprint so rule changes force a reload.
	RulesHash string
}

type Result struct {
	Topics      []topic.Topic
	Warnings    []Warning
	Fingerprint build.Fingerprint
}

type fileResult struct {
	index  int
	topics []topic.Topic
	hash   string
	warn   *Warning
	err    error
}

// Ingest loads every deck under opt.Path. Decks are parsed in parallel and
// merged in path order. A missing source, an unreadable single file or an
// empty result is reported as *errors.LoadError.
func Ingest(opt Options) (*Result, error) {
	files, err := DiscoverSource(opt.Path)
	if err != nil {
		msg := "cannot read topic source"
		if errors.Is(err, os.ErrNotExist) {
			msg = "topic source not found"
		}
		return nil, &domainerr.LoadError{Source: opt.Path, Message: msg, Err: err}
	}
	single := len(files) == 1 && files[0].Deck == ""

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}
	jobs := make(chan int)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- loadDeck(idx, files[idx], opt.DefaultCollection)
			}
		}()
	}

	go func() {
		for i := range files {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	perFile := make([]fileResult, len(files))
	for r := range results {
		perFile[r.index] = r
	}

	res := &Result{}
	var merged []topic.Topic
	var hashes [][]byte
	for i, r := range perFile {
		if r.err != nil {
			if single {
				return nil, &domainerr.LoadError{Source: files[i].Path, Message: "malformed topic file", Err: r.err}
			}
			res.Warnings = append(res.Warnings, Warning{Path: files[i].Path, Msg: r.err.Error()})
			continue
		}
		if r.warn != nil {
			res.Warnings = append(res.Warnings, *r.warn)
		}
		merged = append(merged, r.topics...)
		hashes = append(hashes, []byte(r.hash))
	}

	res.Topics = Prepare(merged, opt.Categorizer)
	if len(res.Topics) == 0 {
		return nil, &domainerr.LoadError{Source: opt.Path, Message: "no topics found", Err: domainerr.ErrNoTopics}
	}

	res.Fingerprint = build.Fingerprint{
		SourceHash: build.HashBytes(hashes...),
		RulesHash:  opt.RulesHash,
	}
	res.Fingerprint.ComputeLoadHash()
	return res, nil
}

func loadDeck(idx int, sf SourceFile, defaultCollection string) fileResult {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return fileResult{index: idx, err: err}
	}
	coll := defaultCollection
	if sf.Deck != "" {
		coll = sf.Deck
	}
	topics, err := Decode(raw, coll)
	if err != nil {
		return fileResult{index: idx, err: err}
	}
	// The collection is part of the result, so a renamed deck or a new
	// default collection must change the hash too.
	r := fileResult{index: idx, topics: topics, hash: build.HashBytes([]byte(coll), raw)}
	if len(topics) == 0 {
		r.warn = &Warning{Path: sf.Path, Msg: "deck has no entries"}
	}
	return r
}

// RulesHash fingerprints the category rules in effect.
func RulesHash(infer bool, rules []config.CategoryRule) string {
	if !infer {
		return "off"
	}
	parts := make([][]byte, 0, len(rules))
	for _, r := range rules {
		parts = append(parts, []byte(fmt.Sprintf("%s=%s", r.Name, r.Pattern)))
	}
	return build.HashBytes(parts...)
}
