package models

import "time"

// AdminSession is the durable login flag of the privileged identity.
// LoginTime is nil while logged out.
type AdminSession struct {
	UserID     int64      `bson:"user_id"`
	IsLoggedIn bool       `bson:"is_logged_in"`
	LoginTime  *time.Time `bson:"login_time"`
}
