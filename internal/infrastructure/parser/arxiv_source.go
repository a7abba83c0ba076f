package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PaperDigest/internal/domain"
	"PaperDigest/internal/ports"
)

const (
	defaultArticleBase = "https://arxiv.org"
	downloadTimeout    = 30 * time.Second
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	pdfContentType     = "application/pdf"
	trailerWindow      = 1024
)

var (
	pdfMagic   = []byte("%PDF-")
	pdfTrailer = []byte("%%EOF")
)

// ArxivSource scrapes a listing page and downloads every listed PDF into dir.
type ArxivSource struct {
	listingURL  string
	articleBase string
	dir         string
	client      *http.Client
	downloads   *http.Client
	logger      *slog.Logger
}

var _ ports.DocumentSource = (*ArxivSource)(nil)

// ArxivOptions configures an ArxivSource. Nil clients get package defaults:
// no timeout for the listing, 30s for each PDF download.
type ArxivOptions struct {
	ListingURL     string
	ArticleBase    string
	Dir            string
	ListingClient  *http.Client
	DownloadClient *http.Client
	Logger         *slog.Logger
}

// NewArxivSource wires HTTP clients and the staging directory.
func NewArxivSource(opts ArxivOptions) *ArxivSource {
	if opts.ListingClient == nil {
		opts.ListingClient = &http.Client{}
	}
	if opts.DownloadClient == nil {
		opts.DownloadClient = &http.Client{Timeout: downloadTimeout}
	}
	if opts.ArticleBase == "" {
		opts.ArticleBase = defaultArticleBase
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &ArxivSource{
		listingURL:  opts.ListingURL,
		articleBase: strings.TrimSuffix(opts.ArticleBase, "/"),
		dir:         opts.Dir,
		client:      opts.ListingClient,
		downloads:   opts.DownloadClient,
		logger:      opts.Logger,
	}
}

type listingEntry struct {
	id    string
	title string
}

// Fetch returns the listed articles whose PDFs were downloaded and verified.
// Listing problems produce an empty result and a warning, never an error.
func (a *ArxivSource) Fetch(ctx context.Context) ([]domain.Article, error) {
	doc, err := a.fetchDocument(ctx, a.listingURL)
	if err != nil {
		a.logger.Warn("listing unavailable", "url", a.listingURL, "error", err)
		return nil, nil
	}

	entries, ok := extractEntries(doc)
	if !ok {
		a.logger.Warn("no articles container in listing", "url", a.listingURL)
		return nil, nil
	}
	a.logger.Debug("listing parsed", "entries", len(entries))

	articles := make([]domain.Article, 0, len(entries))
	seen := map[string]struct{}{}
	for _, entry := range entries {
		if _, dup := seen[entry.id]; dup {
			continue
		}
		seen[entry.id] = struct{}{}

		article := domain.Article{
			ID:           entry.id,
			Title:        entry.title,
			AbstractLink: fmt.Sprintf("%s/abs/%s", a.articleBase, entry.id),
			PDFLink:      fmt.Sprintf("%s/pdf/%s", a.articleBase, entry.id),
		}

		path := a.filePath(entry.id)
		a.logger.Info("downloading pdf", "article_id", entry.id, "path", path)
		if err := a.download(ctx, article.PDFLink, path); err != nil {
			a.logger.Error("skip article", "article_id", entry.id, "error", err)
			continue
		}

		article.ContentPath = path
		articles = append(articles, article)
	}

	return articles, nil
}

func (a *ArxivSource) filePath(id string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(id) + ".pdf"
	return filepath.Join(a.dir, name)
}

func (a *ArxivSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return doc, nil
}

// extractEntries walks dt/dd pairs inside dl#articles. ok is false when the
// container is missing.
func extractEntries(doc *goquery.Document) ([]listingEntry, bool) {
	container := doc.Find("dl#articles").First()
	if container.Length() == 0 {
		return nil, false
	}

	var entries []listingEntry
	container.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		entry, err := parseEntry(dt, dd)
		if err != nil {
			return
		}
		entries = append(entries, entry)
	})

	return entries, true
}

func parseEntry(dt, dd *goquery.Selection) (listingEntry, error) {
	id := strings.TrimSpace(dt.Find(`a[title="Abstract"]`).First().Text())
	if id == "" {
		link := dt.Find(`a[href*="/abs/"]`).First()
		id = strings.TrimSpace(link.Text())
		if id == "" {
			if href, ok := link.Attr("href"); ok {
				id = href[strings.LastIndex(href, "/abs/")+len("/abs/"):]
			}
		}
	}
	id = strings.TrimSpace(strings.TrimPrefix(id, "arXiv:"))
	if id == "" {
		return listingEntry{}, errors.New("entry without identifier")
	}

	if dd.Length() == 0 {
		return listingEntry{}, fmt.Errorf("entry %s without body", id)
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return listingEntry{}, fmt.Errorf("entry %s without title", id)
	}

	return listingEntry{id: id, title: title}, nil
}

// download streams pdfURL into path and verifies the result. On any failure
// the partial file is removed.
func (a *ArxivSource) download(ctx context.Context, pdfURL, path string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", pdfContentType)

	resp, err := a.downloads.Do(req)
	if err != nil {
		return fmt.Errorf("request pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pdf download failed with status %s", resp.Status)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), pdfContentType) {
		return fmt.Errorf("response is not a pdf: %q", resp.Header.Get("Content-Type"))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	written, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("write pdf: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close pdf: %w", closeErr)
	}

	declared := resp.ContentLength > 0
	if declared && written != resp.ContentLength {
		return fmt.Errorf("downloaded %d bytes, expected %d", written, resp.ContentLength)
	}
	if written == 0 {
		return errors.New("downloaded file is empty")
	}

	return verifyPDF(path, !declared)
}

// verifyPDF checks the header magic and, when requireTrailer is set, that the
// final KiB carries the %%EOF marker a truncated file would have lost.
func verifyPDF(path string, requireTrailer bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return errors.New("file does not start with a pdf header")
	}

	if !requireTrailer {
		return nil
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat pdf: %w", err)
	}
	offset := info.Size() - trailerWindow
	if offset < 0 {
		offset = 0
	}
	tail := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(tail, offset); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read pdf trailer: %w", err)
	}
	if !bytes.Contains(tail, pdfTrailer) {
		return errors.New("pdf trailer missing, download looks truncated")
	}

	return nil
}
