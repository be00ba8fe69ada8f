package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/goliatone/go-gameportal/pkg/fetch"
	pkgopenapi "github.com/goliatone/go-gameportal/pkg/openapi"
)

// Loader implements pkgopenapi.Loader by delegating to file, fs.FS, or HTTP
// strategies. Construction helpers live in the top-level gameportal package.
type Loader struct {
	fs      fs.FS
	fetcher *fetch.Client
}

// Ensure the implementation satisfies the public interface.
var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgopenapi.LoaderOptions) pkgopenapi.Loader {
	fetcher := options.Fetcher
	if fetcher == nil && options.AllowHTTPFallback {
		fetchOpts := []fetch.Option{}
		if options.Policy != nil {
			fetchOpts = append(fetchOpts, fetch.WithPolicy(*options.Policy))
		}
		fetcher = fetch.New(fetchOpts...)
	}

	return &Loader{
		fs:      options.FileSystem,
		fetcher: fetcher,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case pkgopenapi.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case pkgopenapi.SourceKindURL:
		if l.fetcher == nil {
			return pkgopenapi.Document{}, errors.New("openapi loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.fetcher, src.Location())
	default:
		err = errors.New("openapi loader: unsupported source kind")
	}
	if err != nil {
		return pkgopenapi.Document{}, err
	}

	return pkgopenapi.NewDocument(src, data)
}

func loadHTTP(ctx context.Context, fetcher *fetch.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("openapi loader: url is required")
	}

	resp, err := fetcher.Do(ctx, fetch.Request{Method: "GET", URL: url})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return data, nil
}
