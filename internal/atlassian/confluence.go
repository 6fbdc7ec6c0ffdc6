package atlassian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/ziadkadry99/auto-qa/internal/config"
)

// Page is a Confluence page reduced to its text.
type Page struct {
	ID           string `json:"page_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	SpaceID      string `json:"space_id"`
	LastModified string `json:"last_modified"`
	URL          string `json:"url"`
}

// Confluence reads pages through the Confluence Cloud v2 REST API.
type Confluence struct {
	client
	site      string
	converter *md.Converter
}

// NewConfluence creates a Confluence client for cfg.Domain.
func NewConfluence(cfg config.AtlassianConfig) *Confluence {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Confluence{
		client:    newClient(cfg),
		site:      siteURL(cfg.Domain),
		converter: converter,
	}
}

func (c *Confluence) apiURL() string { return c.site + "/wiki/api/v2" }

var (
	pagesPathPattern   = regexp.MustCompile(`/pages/(\d+)(?:[/?#]|$)`)
	displayPathPattern = regexp.MustCompile(`/display/([^/]+)/(.+)`)
)

// PageID derives a page id from the supported URL shapes:
// .../pages/<id>/..., ...?pageId=<id> and /display/<SPACE>/<Title>, the
// last resolved through a title search.
func (c *Confluence) PageID(ctx context.Context, pageURL string) (string, error) {
	if m := pagesPathPattern.FindStringSubmatch(pageURL); m != nil {
		return m[1], nil
	}

	if u, err := url.Parse(pageURL); err == nil {
		if id := u.Query().Get("pageId"); id != "" {
			return id, nil
		}
	}

	if m := displayPathPattern.FindStringSubmatch(pageURL); m != nil {
		return c.resolveByTitle(ctx, m[1], strings.ReplaceAll(m[2], "+", " "))
	}

	return "", ErrUnresolvableURL
}

func (c *Confluence) resolveByTitle(ctx context.Context, spaceKey, title string) (string, error) {
	params := url.Values{}
	params.Set("space-key", spaceKey)
	params.Set("title", title)
	params.Set("limit", "1")

	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.apiURL()+"/pages", params, ErrPageNotFound, &result); err != nil {
		return "", err
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("%w: %s in space %s", ErrPageNotFound, title, spaceKey)
	}
	return result.Results[0].ID, nil
}

type pageResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	SpaceID string `json:"spaceId"`
	Version struct {
		CreatedAt string `json:"createdAt"`
	} `json:"version"`
	Body struct {
		AtlasDocFormat *struct {
			Value string `json:"value"`
		} `json:"atlas_doc_format"`
		Storage *struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

func (c *Confluence) fetch(ctx context.Context, id, bodyFormat string) (*pageResponse, error) {
	params := url.Values{}
	params.Set("body-format", bodyFormat)

	var page pageResponse
	if err := c.getJSON(ctx, c.apiURL()+"/pages/"+url.PathEscape(id), params, ErrPageNotFound, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PageByURL fetches the page a URL points at and reduces its body to text.
// Atlas document bodies are preferred; storage (XHTML) bodies are the
// fallback and go through markdown conversion.
func (c *Confluence) PageByURL(ctx context.Context, pageURL string) (*Page, error) {
	if c.site == "" {
		return nil, ErrNotConfigured
	}

	id, err := c.PageID(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	raw, err := c.fetch(ctx, id, "atlas_doc_format")
	if err != nil {
		return nil, err
	}

	var content string
	if raw.Body.AtlasDocFormat != nil && raw.Body.AtlasDocFormat.Value != "" {
		content = atlasText(raw.Body.AtlasDocFormat.Value)
	} else {
		storage, err := c.fetch(ctx, id, "storage")
		if err != nil {
			return nil, err
		}
		if storage.Body.Storage != nil {
			content, err = c.storageText(storage.Body.Storage.Value)
			if err != nil {
				return nil, err
			}
		}
	}

	return &Page{
		ID:           raw.ID,
		Title:        raw.Title,
		Content:      content,
		SpaceID:      raw.SpaceID,
		LastModified: raw.Version.CreatedAt,
		URL:          fmt.Sprintf("%s/wiki/pages/viewpage.action?pageId=%s", c.site, raw.ID),
	}, nil
}

// atlasText walks an atlas_doc_format document. A value that is not JSON is
// returned unchanged.
func atlasText(value string) string {
	var doc struct {
		Content []adfNode `json:"content"`
	}
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		return value
	}
	return pageText(doc.Content)
}

func (c *Confluence) storageText(value string) (string, error) {
	out, err := c.converter.ConvertString(value)
	if err != nil {
		return "", fmt.Errorf("converting storage body: %w", err)
	}
	return strings.TrimSpace(out), nil
}
