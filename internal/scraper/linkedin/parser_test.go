package linkedin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPageHTML = `
<html><body>
<div class="scaffold-layout__list">
  <div data-job-id="search">filter bar</div>
  <ul>
    <li class="scaffold-layout__list-item">
      <div class="job-card-container" data-job-id="4211001122">
        <a class="job-card-container__link" href="/jobs/view/4211001122/?refId=abc&amp;trackingId=xyz">Go Developer</a>
      </div>
    </li>
    <li class="scaffold-layout__list-item">
      <div class="job-card-container" data-job-id="4211003344">
        <a class="job-card-container__link" href="/jobs/view/4211003344/?refId=def">Backend Engineer</a>
      </div>
    </li>
    <li class="scaffold-layout__list-item">
      <div class="job-card-container" data-job-id="4211001122">duplicate render of the first card</div>
    </li>
    <li><div data-job-id="">placeholder without id</div></li>
  </ul>
</div>
<footer id="jobs-search-results-footer">1 of 4</footer>
</body></html>`

func TestParseJobRefs(t *testing.T) {
	refs, err := parseJobRefs(searchPageHTML)
	require.NoError(t, err)

	require.Len(t, refs, 2, "sentinel, empty and duplicate ids are dropped")
	assert.Equal(t, "4211001122", refs[0].ID)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4211001122/", refs[0].URL)
	assert.Equal(t, "4211003344", refs[1].ID)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4211003344/", refs[1].URL)
}

func TestParseJobRefsEmptyPage(t *testing.T) {
	refs, err := parseJobRefs(`<html><body><div class="jobs-search-no-results-banner">No matching jobs</div></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

const detailPageHTML = `
<html><body>
<div class="job-details-jobs-unified-top-card">
  <h1 class="job-details-jobs-unified-top-card__job-title">
    <span>  Senior Go Developer  </span>
  </h1>
  <div class="job-details-jobs-unified-top-card__company-name">
    <a href="/company/acme/">Acme B.V.</a>
  </div>
  <div class="job-details-jobs-unified-top-card__primary-description-container">
    <span>Amsterdam, North Holland, Netherlands</span> · <span>3 days ago</span> · <span>52 applicants</span>
  </div>
</div>
<div class="jobs-description__content">
  <p>We build distribution software in Go.</p>
  <p>Visa sponsorship and relocation support available.</p>
</div>
</body></html>`

func TestParseJobDetail(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	ref := jobRef{ID: "4211001122", URL: canonicalURL("4211001122")}

	p, err := parseJobDetail(detailPageHTML, ref, now)
	require.NoError(t, err)

	assert.Equal(t, "4211001122", p.JobID)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4211001122/", p.URL)
	assert.Equal(t, "Senior Go Developer", p.Title)
	assert.Equal(t, "Acme B.V.", p.Company)
	assert.Equal(t, "Amsterdam, North Holland, Netherlands", p.Location)
	assert.Equal(t, "We build distribution software in Go. Visa sponsorship and relocation support available.", p.Description)
	assert.Equal(t, "3 days ago", p.PostedDateRaw)
	require.NotNil(t, p.PostedDate)
	assert.Equal(t, now.Add(-3*24*time.Hour), *p.PostedDate)
	assert.Equal(t, "linkedin", p.Source)
	assert.Equal(t, now, p.ScrapedAt)
}

func TestParseJobDetailAbsoluteDate(t *testing.T) {
	html := `
<html><body>
<h1 class="job-details-jobs-unified-top-card__job-title">Go Developer</h1>
<div class="job-details-jobs-unified-top-card__company-name">Acme</div>
<div class="job-details-jobs-unified-top-card__primary-description-container">
  <span>London, England, United Kingdom</span> · <time datetime="2026-08-20">Aug 20</time>
</div>
<div id="job-details">Backend role.</div>
</body></html>`

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	p, err := parseJobDetail(html, jobRef{ID: "1", URL: canonicalURL("1")}, now)
	require.NoError(t, err)

	require.NotNil(t, p.PostedDate)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), *p.PostedDate)
	assert.Equal(t, "2026-08-20", p.PostedDateRaw)
	assert.Equal(t, "London, England, United Kingdom", p.Location)
	assert.Equal(t, "Backend role.", p.Description, "#job-details works as description fallback")
}

func TestParseJobDetailUnparseableDate(t *testing.T) {
	html := `
<html><body>
<h1 class="job-details-jobs-unified-top-card__job-title">Go Developer</h1>
<div class="job-details-jobs-unified-top-card__company-name">Acme</div>
<div class="job-details-jobs-unified-top-card__primary-description-container">
  <span>Berlin, Germany</span> · <span>Promoted</span>
</div>
<div class="jobs-description__content">Kubernetes platform team.</div>
</body></html>`

	p, err := parseJobDetail(html, jobRef{ID: "2", URL: canonicalURL("2")}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, p.PostedDate, "no recognizable date leaves PostedDate unset")
	assert.Empty(t, p.PostedDateRaw)
	assert.Equal(t, "Berlin, Germany", p.Location)
}

func TestParseJobDetailMissingFields(t *testing.T) {
	tbl := []struct {
		name string
		html string
		want string
	}{
		{
			"no title",
			`<html><body><div class="job-details-jobs-unified-top-card__company-name">Acme</div>
			 <div class="jobs-description__content">text</div></body></html>`,
			"no job title",
		},
		{
			"no company",
			`<html><body><h1 class="job-details-jobs-unified-top-card__job-title">Dev</h1>
			 <div class="jobs-description__content">text</div></body></html>`,
			"no company name",
		},
		{
			"no description",
			`<html><body><h1 class="job-details-jobs-unified-top-card__job-title">Dev</h1>
			 <div class="job-details-jobs-unified-top-card__company-name">Acme</div></body></html>`,
			"no description",
		},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseJobDetail(tt.html, jobRef{ID: "3", URL: canonicalURL("3")}, time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a\n\t b   c \n"))
	assert.Equal(t, "", cleanText("   \n\t "))
}
