package service

import (
	"strconv"

	"github.com/alx-polly/polly/config"
	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/util/common"
	"github.com/alx-polly/polly/util/random"
	"github.com/alx-polly/polly/web/entity"
)

var defaultValueMap = map[string]string{
	"webListen":     "",
	"webPort":       "8080",
	"secret":        random.Seq(32),
	"sessionMaxAge": "60",
	"pageSize":      "10",
}

// ApplyFileDefaults overlays values from polly.toml onto the built-in
// defaults. Settings rows in the database still win.
func ApplyFileDefaults(defaults *config.FileDefaults) {
	if defaults == nil {
		return
	}
	if defaults.Listen != "" {
		defaultValueMap["webListen"] = defaults.Listen
	}
	if defaults.Port != 0 {
		defaultValueMap["webPort"] = strconv.Itoa(defaults.Port)
	}
	if defaults.SessionMaxAge != 0 {
		defaultValueMap["sessionMaxAge"] = strconv.Itoa(defaults.SessionMaxAge)
	}
	if defaults.PageSize != 0 {
		defaultValueMap["pageSize"] = strconv.Itoa(defaults.PageSize)
	}
}

type SettingService struct{}

func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	listen, err := s.GetListen()
	if err != nil {
		return nil, err
	}
	port, err := s.GetPort()
	if err != nil {
		return nil, err
	}
	maxAge, err := s.GetSessionMaxAge()
	if err != nil {
		return nil, err
	}
	pageSize, err := s.GetPageSize()
	if err != nil {
		return nil, err
	}
	return &entity.AllSetting{
		WebListen:     listen,
		WebPort:       port,
		SessionMaxAge: maxAge,
		PageSize:      pageSize,
	}, nil
}

func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) SetListen(ip string) error {
	return s.setString("webListen", ip)
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetSecret() (string, error) {
	secret, err := s.getString("secret")
	if err == nil && secret == defaultValueMap["secret"] {
		// Persist the generated secret so sessions survive restarts.
		if saveErr := s.saveSetting("secret", secret); saveErr != nil {
			return "", saveErr
		}
	}
	return secret, err
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) GetPageSize() (int, error) {
	return s.getInt("pageSize")
}

func (s *SettingService) SetPageSize(size int) error {
	return s.setInt("pageSize", size)
}

