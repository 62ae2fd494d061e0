// Package config loads hostdom.json, the configuration shared by the
// hostdom commands.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 7878,
//	    "path": "/host",
//	    "heartbeatInterval": "30s",
//	    "allowedOrigins": ["https://example.com"]
//	  },
//	  "session": {
//	    "diffStrategy": "minimal",
//	    "rootTag": 1,
//	    "historySize": 1024
//	  },
//	  "telemetry": {
//	    "metrics": true,
//	    "namespace": "hostdom",
//	    "tracing": false
//	  },
//	  "journal": {
//	    "dir": "journals",
//	    "s3Bucket": "",
//	    "archiveOnClose": true
//	  },
//	  "types": "components.yaml"
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
