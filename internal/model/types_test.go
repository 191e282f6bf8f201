package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPublishIntent_Constructors(t *testing.T) {
	assert.Equal(t, PublishIntent{Kind: IntentSaveDraft}, SaveDraft())
	assert.Equal(t, PublishIntent{Kind: IntentPublish}, PublishNow())

	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, PublishIntent{Kind: IntentSchedule, At: at}, ScheduleAt(at))
}

func TestPublishRequest_Validate(t *testing.T) {
	req := PublishRequest{Article: Article{Title: "A valid title", Body: string(make([]byte, 60))}}
	assert.NoError(t, req.Validate())

	short := PublishRequest{Article: Article{Title: "hi", Body: string(make([]byte, 60))}}
	err := short.Validate()
	require.Error(t, err)
	pe, ok := AsPhaseError(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidArticleKind, pe.Kind)

	shortBody := PublishRequest{Article: Article{Title: "A valid title", Body: "too short"}}
	assert.Error(t, shortBody.Validate())
}

func TestPublishRequest_YAMLRoundTrip(t *testing.T) {
	req := PublishRequest{
		Article: Article{
			Title: "Everything you need to know about snow leopards",
			Body:  "<p>Snow leopards live at high altitude across central Asia.</p>",
			SEO:   SEO{MetaTitle: "Snow Leopards", PrimaryKeywords: []string{"snow leopard"}},
		},
		Images: []Image{{Filename: "leopard.jpg", Position: 1, IsFeatured: true}},
		Taxonomy: Taxonomy{
			PrimaryCategory: "Wildlife",
			Tags:            []string{"conservation"},
		},
		FAQs:      []FAQ{{Question: "Where do they live?", Answer: "Central Asia."}},
		Intent:    ScheduleAt(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)),
		TargetCMS: TargetCMS{URL: "https://example.test", Kind: "wordpress"},
		Credentials: Credentials{
			Username: "editor",
			Password: "hunter2",
		},
	}

	data, err := yaml.Marshal(req)
	require.NoError(t, err)

	var decoded PublishRequest
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, req.Article.Title, decoded.Article.Title)
	assert.Equal(t, req.Taxonomy.PrimaryCategory, decoded.Taxonomy.PrimaryCategory)
	assert.Equal(t, req.Intent.Kind, decoded.Intent.Kind)
	assert.Equal(t, req.TargetCMS.Kind, decoded.TargetCMS.Kind)
	assert.Len(t, decoded.Images, 1)
	assert.True(t, decoded.Images[0].IsFeatured)
}

func TestCanonicalPhaseSequence_OrderInvariant(t *testing.T) {
	require.NotEmpty(t, CanonicalPhaseSequence)
	assert.Equal(t, PhaseInitialize, CanonicalPhaseSequence[0])
	assert.Equal(t, PhaseClose, CanonicalPhaseSequence[len(CanonicalPhaseSequence)-1])

	// SAVE_DRAFT precedes PROCESS_IMAGES precedes TERMINAL, per the
	// "body/content committed before media and SEO" ordering invariant.
	indexOf := func(p Phase) int {
		for i, x := range CanonicalPhaseSequence {
			if x == p {
				return i
			}
		}
		return -1
	}
	assert.Less(t, indexOf(PhaseSaveDraft), indexOf(PhaseProcessImages))
	assert.Less(t, indexOf(PhaseProcessImages), indexOf(PhaseTerminal))
}
