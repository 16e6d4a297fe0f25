// Package recommend derives read-only views over the store: related
// article suggestions and aggregate reading statistics.
package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
)

const (
	maxRecommendations = 5
	maxTerms           = 20
	tagWeight          = 3
	termWeight         = 1
	recencyWeight      = 1
	recencyWindow      = 7 * 24 * time.Hour
)

var stopwords = buildStopwords()

// Scored is one recommended article with its relevance score.
type Scored struct {
	Article     model.Article
	Score       int
	MatchedTags []string
}

// Related ranks the unread, unarchived articles most similar to the one
// being read: shared tags weigh heaviest, then shared content terms, with
// a small recency bonus. At most five, all with positive scores.
func Related(current model.Article, all []model.Article) []Scored {
	var candidates []model.Article
	for _, a := range all {
		if a.ID == current.ID || a.IsRead || a.IsArchived {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return nil
	}

	currentTerms := extractTerms(current.Content)
	now := time.Now()

	var scored []Scored
	for _, article := range candidates {
		s := Scored{Article: article}

		for _, tag := range article.Tags {
			if current.HasTag(tag) {
				s.Score += tagWeight
				s.MatchedTags = append(s.MatchedTags, tag)
			}
		}

		if len(currentTerms) > 0 {
			text := strings.ToLower(content.StripText(article.Content))
			for _, term := range currentTerms {
				if strings.Contains(text, term) {
					s.Score += termWeight
				}
			}
		}

		if added, err := model.ParseTime(article.DateAdded); err == nil && now.Sub(added) < recencyWindow {
			s.Score += recencyWeight
		}

		if s.Score > 0 {
			scored = append(scored, s)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}
	return scored
}

// extractTerms returns the article's top twenty content words by
// frequency, stopwords and short words removed.
func extractTerms(html string) []string {
	text := strings.ToLower(content.StripText(html))

	freq := map[string]int{}
	for _, word := range strings.FieldsFunc(text, isWordBoundary) {
		if len(word) <= 3 || stopwords[word] {
			continue
		}
		freq[word]++
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	return terms
}

func isWordBoundary(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r >= 0x80)
}

func buildStopwords() map[string]bool {
	words := strings.Fields(`
		the be to of and a in that have i it for not on with he as you do at
		this but his by from they we say her she or an will my one all would
		there their what so up out if about who get which go me when make can
		like time no just him know take people into year your good some could
		them see other than then now look only come its over think also back
		after use two how our work first well way even new want because any
		these give day most us is are was were been has had did does should
		may might must shall more very much many own same such still each every`)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
