package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fan-arena/arena-gov/src/ledger"
)

type Votes struct {
	eng *ledger.Engine
	qry *ledger.Query
}

func NewVotes(eng *ledger.Engine, qry *ledger.Query) Votes {
	return Votes{eng: eng, qry: qry}
}

func (v Votes) Cast(c *gin.Context) {
	var req struct {
		ProposalID *uint64 `json:"proposalId" binding:"required"`
		Choice     string  `json:"choice" binding:"required,oneof=for against"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	err := v.eng.Vote(c, *req.ProposalID, c.GetString("addr"), ledger.Choice(req.Choice))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"err": err.Error()})
		return
	}
	c.Status(http.StatusCreated)
}

func (v Votes) Status(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad proposal id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"voted": v.qry.HasUserVoted(c, id, c.GetString("addr")),
	})
}
