package engine

import "sort"

// Standing é a posição de uma identidade no leaderboard
type Standing struct {
	Identity string `json:"identity"`
	Rank     int    `json:"rank"`
	// TotalSpent é o valor acumulado ofertado (top spender)
	TotalSpent int64 `json:"total_spent"`
	// Leads conta quantos lances deixaram a identidade em primeiro (top bidder)
	Leads int64 `json:"leads"`
}

// Ranking mantém o leaderboard atualizado a cada lance.
// Ordem total: valor acumulado desc, empate por identidade asc.
type Ranking struct {
	spend  map[string]int64
	leads  map[string]int64
	leader string
}

func NewRanking() *Ranking {
	return &Ranking{
		spend: make(map[string]int64),
		leads: make(map[string]int64),
	}
}

func ahead(a string, av int64, b string, bv int64) bool {
	if av != bv {
		return av > bv
	}
	return a < b
}

// Record atualiza o leaderboard com o total acumulado de identity e informa
// se identity ficou em primeiro. Totais só crescem, então comparar com o
// líder atual basta.
func (r *Ranking) Record(identity string, cumulative int64) (leader bool) {
	r.spend[identity] = cumulative
	if r.leader == "" || ahead(identity, cumulative, r.leader, r.spend[r.leader]) {
		r.leader = identity
	}
	if r.leader == identity {
		r.leads[identity]++
		return true
	}
	return false
}

func (r *Ranking) Leader() string { return r.leader }

func (r *Ranking) sorted() []Standing {
	out := make([]Standing, 0, len(r.spend))
	for id, total := range r.spend {
		out = append(out, Standing{Identity: id, TotalSpent: total, Leads: r.leads[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		return ahead(out[i].Identity, out[i].TotalSpent, out[j].Identity, out[j].TotalSpent)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Top retorna as n primeiras posições (n <= 0 retorna todas)
func (r *Ranking) Top(n int) []Standing {
	all := r.sorted()
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// Standing retorna a posição de identity; ok=false se nunca deu lance
func (r *Ranking) Standing(identity string) (Standing, bool) {
	if _, ok := r.spend[identity]; !ok {
		return Standing{}, false
	}
	for _, s := range r.sorted() {
		if s.Identity == identity {
			return s, true
		}
	}
	return Standing{}, false
}
