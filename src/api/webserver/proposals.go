package webserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/fan-arena/arena-gov/src/ledger"
)

type Proposals struct {
	eng *ledger.Engine
	qry *ledger.Query
	pol *bluemonday.Policy
}

func NewProposals(eng *ledger.Engine, qry *ledger.Query) Proposals {
	return Proposals{eng: eng, qry: qry, pol: bluemonday.StrictPolicy()}
}

func (h Proposals) Create(c *gin.Context) {
	var req struct {
		Title            string `json:"title" binding:"required"`
		Description      string `json:"description" binding:"required"`
		VotingPeriodDays int    `json:"votingPeriodDays" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	p, err := h.eng.CreateProposal(c,
		h.pol.Sanitize(req.Title),
		h.pol.Sanitize(req.Description),
		req.VotingPeriodDays,
		c.GetString("addr"),
	)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Proposals) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	p, err := h.qry.GetProposal(c, id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// List returns proposals newest first by default, with the filter/sort
// options the front end previously applied client-side.
func (h Proposals) List(c *gin.Context) {
	all, err := h.qry.AllProposals(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"err": err.Error()})
		return
	}

	now := h.eng.Clock().Now()
	status := c.Query("status")
	search := strings.ToLower(c.Query("q"))

	out := make([]ledger.Proposal, 0, len(all))
	for _, p := range all {
		switch status {
		case "active":
			if !p.OpenAt(now) {
				continue
			}
		case "closed":
			if p.OpenAt(now) {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		out = append(out, p)
	}

	switch c.Query("sort") {
	case "oldest":
		// AllProposals is already ascending id order.
	case "mostVotes":
		sort.Slice(out, func(i, j int) bool {
			return out[i].VoteCountFor+out[i].VoteCountAgainst >
				out[j].VoteCountFor+out[j].VoteCountAgainst
		})
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}

	c.JSON(http.StatusOK, out)
}
