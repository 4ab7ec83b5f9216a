// Package domain models the crop reference dataset and the inputs to a
// recommendation.
//
// # Dataset
//
// The reference file is a small delimited table (crop_data.csv) whose headers
// mix Chinese and English spellings of the same concepts. The file's text
// encoding is not known upfront; the dataset loader resolves it by trial
// (see internal/dataset). After loading, headers are normalized: surrounding
// whitespace, spaces, and parenthesis characters are removed, so a header
// like " 降雨 (mm) " becomes "降雨mm".
//
// # Canonical fields
//
// The system needs seven columns, each identified by a canonical field name
// independent of the literal header text:
//
//	month    planting month          种植月 | 月份 | month
//	temp     average temperature ℃   温度℃ | 温度 | temp
//	rain     monthly rainfall mm     降雨mm | 降雨 | rain
//	ph       soil pH                 土壤pH | pH值 | ph
//	crop     crop label              作物 | crop
//	problems advisory free text      常见问题 | problems
//	yield    yield tier              产量等级 | yield
//
// Resolution is order-sensitive: for each canonical field the accepted
// spellings are tried in the order listed and the first one present in the
// header wins. The five training fields (month, temp, rain, ph, crop) are
// mandatory; a dataset that cannot resolve one of them is unusable and the
// service refuses to start. The two advisory fields degrade to empty output.
//
// # Weather
//
// Live readings come from OpenWeatherMap's current-weather endpoint. The API
// reports rainfall as millimeters over the last hour; the monthly figure the
// model needs is extrapolated as hourly × 24 × 30. That is a documented
// approximation, not a meteorological model — it exists so a live reading can
// stand in for the dataset's monthly rainfall column.
package domain
