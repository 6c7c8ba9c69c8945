package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

// WhatsAppConfig carries the Graph API credentials of the bot line.
type WhatsAppConfig struct {
	AccessToken   string `yaml:"access_token" env-default:""`
	VerifyToken   string `yaml:"verify_token" env-default:""`
	AppSecret     string `yaml:"app_secret" env-default:""`
	PhoneNumberID string `yaml:"phone_number_id" env-default:""`
	// BotNumber is the call center line, used to resolve the CallCenter record.
	BotNumber string `yaml:"bot_number" env-default:""`
	TypingMs  int    `yaml:"typing_ms" env-default:"1200"`
}

type Config struct {
	Env      string         `yaml:"env" env-default:"local"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"CallServiceAlerts"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Mongo struct {
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"callservice"`
	} `yaml:"mongo"`
	Cache struct {
		AttendantRefreshSec int `yaml:"attendant_refresh_sec" env-default:"30"`
		SectorRefreshSec    int `yaml:"sector_refresh_sec" env-default:"60"`
	} `yaml:"cache"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9180"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
