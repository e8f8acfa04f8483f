// Package composer turns a one-locale draft into a complete bilingual post:
// it validates the draft, fills the companion locale from the caller or the
// translator, and derives slug, excerpt, reading time and date.
package composer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"go.uber.org/zap"
)

const (
	maxTitleLength = 40

	// DefaultImageURL is used when a post has no uploaded cover.
	DefaultImageURL = "/ugursahan.webp"
)

// Translator is the translation gateway used to fill the companion locale.
type Translator interface {
	Translate(ctx context.Context, text string, source, target domain.Locale) (string, error)
}

// Draft is what a caller submits for create and update.
type Draft struct {
	Title           domain.LocalizedText
	Content         domain.LocalizedText
	Excerpt         domain.LocalizedText
	Tags            domain.Tags
	Category        string
	ImageURL        string
	CreatedAt       string
	ReadingTime     string
	SourceLocale    string
	ShouldTranslate bool
}

// TranslationError aborts a compose when any translator call fails.
type TranslationError struct {
	Field  string
	Target domain.Locale
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s to %s: %v", e.Field, e.Target, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

type Composer struct {
	translator Translator
	logger     *zap.SugaredLogger
	now        func() time.Time
}

type Option func(*Composer)

// WithClock overrides the clock used for a missing creation date.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

func New(translator Translator, logger *zap.SugaredLogger, opts ...Option) *Composer {
	c := &Composer{
		translator: translator,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// validated carries the parsed scalar fields of a draft.
type validated struct {
	source      domain.Locale
	target      domain.Locale
	category    domain.Category
	readingTime int
	createdAt   string
}

// Compose validates the draft and assembles the post owned by authorID.
// Translation calls run one at a time; the first failure aborts the compose.
func (c *Composer) Compose(ctx context.Context, draft Draft, authorID string) (*domain.Post, error) {
	v, err := c.validate(draft)
	if err != nil {
		return nil, err
	}
	src, tgt := v.source, v.target

	post := &domain.Post{
		Title:       domain.LocalizedText{src: draft.Title.Get(src)},
		Content:     domain.LocalizedText{src: draft.Content.Get(src)},
		Excerpt:     domain.LocalizedText{},
		Category:    v.category,
		ImageURL:    strings.TrimSpace(draft.ImageURL),
		ReadingTime: v.readingTime,
		CreatedAt:   v.createdAt,
		AuthorID:    authorID,
		IsPublished: true,
	}
	if post.ImageURL == "" {
		post.ImageURL = DefaultImageURL
	}
	if post.ReadingTime == 0 {
		post.ReadingTime = EstimateReadingTime(post.Content[src])
	}

	if draft.Excerpt.Has(src) {
		post.Excerpt[src] = draft.Excerpt.Get(src)
	} else {
		post.Excerpt[src] = DeriveExcerpt(post.Content[src])
	}

	sourceTags := domain.CleanTags(draft.Tags.Get(src))
	post.Tags.Set(src, sourceTags)

	// Caller-supplied companion fields are always kept verbatim.
	if draft.Title.Has(tgt) {
		post.Title[tgt] = draft.Title.Get(tgt)
	}
	if draft.Content.Has(tgt) {
		post.Content[tgt] = draft.Content.Get(tgt)
	}
	if draft.Excerpt.Has(tgt) {
		post.Excerpt[tgt] = draft.Excerpt.Get(tgt)
	}
	companionTags := domain.CleanTags(draft.Tags.Get(tgt))

	companionComplete := post.Title.Has(tgt) && post.Content.Has(tgt)
	if companionComplete {
		if !post.Excerpt.Has(tgt) {
			post.Excerpt[tgt] = DeriveExcerpt(post.Content[tgt])
		}
		if len(companionTags) == 0 {
			companionTags = sourceTags
		}
		post.Tags.Set(tgt, companionTags)
	} else {
		// validate already rejected an incomplete companion without the translate flag.
		if err := c.fillCompanion(ctx, post, src, tgt, sourceTags, companionTags); err != nil {
			return nil, err
		}
	}

	post.Slug = domain.LocalizedText{}
	for _, l := range domain.Locales {
		slug := Slugify(post.Title[l])
		if slug == "" {
			return nil, domain.NewValidationError("slug."+string(l), domain.ReasonInvalid)
		}
		post.Slug[l] = slug
	}

	return post, nil
}

// fillCompanion translates the companion fields the caller left empty, in the
// order title, content, excerpt, tags.
func (c *Composer) fillCompanion(ctx context.Context, post *domain.Post, src, tgt domain.Locale, sourceTags, companionTags []string) error {
	if c.translator == nil {
		return &TranslationError{Field: "title", Target: tgt, Err: fmt.Errorf("no translator configured")}
	}

	translate := func(field, text string) (string, error) {
		out, err := c.translator.Translate(ctx, text, src, tgt)
		if err != nil {
			if c.logger != nil {
				c.logger.Warnw("Translation failed", "field", field, "source", src, "target", tgt, "error", err)
			}
			return "", &TranslationError{Field: field, Target: tgt, Err: err}
		}
		return out, nil
	}

	if !post.Title.Has(tgt) {
		out, err := translate("title", post.Title[src])
		if err != nil {
			return err
		}
		// translated titles obey the typed-title limit
		if utf8.RuneCountInString(out) > maxTitleLength {
			return domain.NewValidationError(fieldName("title", tgt), domain.ReasonTooLong)
		}
		post.Title[tgt] = out
	}

	contentTranslated := false
	if !post.Content.Has(tgt) {
		out, err := translate("content", post.Content[src])
		if err != nil {
			return err
		}
		post.Content[tgt] = out
		contentTranslated = true
	}

	if !post.Excerpt.Has(tgt) {
		if contentTranslated {
			out, err := translate("excerpt", post.Excerpt[src])
			if err != nil {
				return err
			}
			post.Excerpt[tgt] = out
		} else {
			post.Excerpt[tgt] = DeriveExcerpt(post.Content[tgt])
		}
	}

	if len(companionTags) == 0 && len(sourceTags) > 0 {
		companionTags = make([]string, 0, len(sourceTags))
		for i, tag := range sourceTags {
			out, err := translate(fmt.Sprintf("tags[%d]", i), tag)
			if err != nil {
				return err
			}
			companionTags = append(companionTags, out)
		}
	}
	post.Tags.Set(tgt, companionTags)
	return nil
}

func (c *Composer) validate(draft Draft) (validated, error) {
	var v validated
	verr := &domain.ValidationError{}

	src, ok := domain.ParseLocale(draft.SourceLocale)
	if !ok {
		verr.Add("source_language", domain.ReasonInvalid)
		return v, verr
	}
	tgt := src.Companion()
	v.source, v.target = src, tgt

	if !draft.Title.Has(src) {
		verr.Add(fieldName("title", src), domain.ReasonRequired)
	}
	if !draft.Content.Has(src) {
		verr.Add(fieldName("content", src), domain.ReasonRequired)
	}
	if strings.TrimSpace(draft.Category) == "" {
		verr.Add("category", domain.ReasonRequired)
	}
	if !draft.ShouldTranslate {
		if !draft.Title.Has(tgt) {
			verr.Add(fieldName("title", tgt), domain.ReasonRequired)
		}
		if !draft.Content.Has(tgt) {
			verr.Add(fieldName("content", tgt), domain.ReasonRequired)
		}
	}

	for _, l := range domain.Locales {
		if draft.Title.Has(l) && utf8.RuneCountInString(draft.Title.Get(l)) > maxTitleLength {
			verr.Add(fieldName("title", l), domain.ReasonTooLong)
		}
	}

	if category := domain.Category(strings.TrimSpace(draft.Category)); category != "" {
		if category.Valid() {
			v.category = category
		} else {
			verr.Add("category", domain.ReasonInvalid)
		}
	}

	if strings.TrimSpace(draft.ReadingTime) != "" {
		minutes, err := ParseReadingTime(draft.ReadingTime)
		if err != nil {
			verr.Add("reading_time", domain.ReasonInvalid)
		} else {
			v.readingTime = minutes
		}
	}

	if strings.TrimSpace(draft.CreatedAt) == "" {
		v.createdAt = c.now().UTC().Format(isoDateLayout)
	} else {
		date, err := NormalizeDate(draft.CreatedAt)
		if err != nil {
			verr.Add("created_at", domain.ReasonInvalid)
		} else {
			v.createdAt = date
		}
	}

	if !verr.Empty() {
		return v, verr
	}
	return v, nil
}

func fieldName(field string, l domain.Locale) string {
	return field + "." + string(l)
}
