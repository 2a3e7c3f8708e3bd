package config

import "os"

// Features toggles optional behaviour. Notification events are on unless
// explicitly disabled; delivery channels are opt-in.
type Features struct {
	WelcomeNotifications bool
	RewardNotifications  bool
	EmailDelivery        bool
	SlackDelivery        bool
}

func LoadFeatures() Features {
	return Features{
		WelcomeNotifications: os.Getenv("WELCOME_ENABLED") != "false",
		RewardNotifications:  os.Getenv("REWARDS_ENABLED") != "false",
		EmailDelivery:        os.Getenv("EMAIL_ENABLED") == "true",
		SlackDelivery:        os.Getenv("SLACK_ENABLED") == "true",
	}
}
