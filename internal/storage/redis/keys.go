package redis

import "github.com/teamdraw/teamdraw-go/internal/model"

const keyPrefix = "teamdraw:"

// orderKey is a sorted set of participant ids scored by registration time,
// used to reconstruct insertion-ordered snapshots
const orderKey = keyPrefix + "participants:order"

func participantKey(id model.ParticipantID) string {
	return keyPrefix + "participant:" + string(id)
}

func usernameKey(username string) string {
	return keyPrefix + "username:" + model.NormalizeUsername(username)
}
